package dmlkit

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
	"github.com/dmlkit/dmlkit/dmlkit/storage"
)

// FieldType specifies the declared type of a table column
type FieldType string

const (
	FieldInteger  FieldType = "integer"
	FieldFloat    FieldType = "float"
	FieldText     FieldType = "text"
	FieldBool     FieldType = "bool"
	FieldDateTime FieldType = "datetime"
)

// FieldSpec defines one declared column
type FieldSpec struct {
	Type FieldType `json:"type"`
}

// TableDef describes one registered table. Every table implicitly
// carries the common columns id, create_date and write_date in addition
// to its declared fields.
type TableDef struct {
	Name   string               `json:"-"`
	Fields map[string]FieldSpec `json:"fields"`
}

var validNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// commonFields are present on every table and cannot be redeclared
var commonFields = map[string]FieldSpec{
	IDField:         {Type: FieldInteger},
	CreateDateField: {Type: FieldDateTime},
	WriteDateField:  {Type: FieldDateTime},
}

// Validate checks the table definition
func (t *TableDef) Validate() error {
	if !validNameRe.MatchString(t.Name) {
		return dmlerrors.SchemaError(fmt.Sprintf("invalid table name: %s (must match %s)", t.Name, validNameRe.String()))
	}
	for name, spec := range t.Fields {
		if !validNameRe.MatchString(name) {
			return dmlerrors.SchemaError(fmt.Sprintf("invalid field name: %s (must match %s)", name, validNameRe.String()))
		}
		if _, reserved := commonFields[name]; reserved {
			return dmlerrors.SchemaError(fmt.Sprintf("field name '%s' is reserved", name))
		}
		switch spec.Type {
		case FieldInteger, FieldFloat, FieldText, FieldBool, FieldDateTime:
			// valid
		default:
			return dmlerrors.SchemaError(fmt.Sprintf("unknown field type '%s' for field '%s'", spec.Type, name))
		}
	}
	return nil
}

// TableName implements storage.FieldResolver
func (t *TableDef) TableName() string { return t.Name }

// ResolveField implements storage.FieldResolver. It resolves declared
// fields and the implicit common columns.
func (t *TableDef) ResolveField(name string) (storage.FieldHandle, bool) {
	if _, ok := t.Fields[name]; ok {
		return storage.FieldHandle{Table: t.Name, Column: name}, true
	}
	if _, ok := commonFields[name]; ok {
		return storage.FieldHandle{Table: t.Name, Column: name}, true
	}
	return storage.FieldHandle{}, false
}

// DefaultOrderingField implements storage.FieldResolver; records sort
// by id unless a sort clause says otherwise
func (t *TableDef) DefaultOrderingField() storage.FieldHandle {
	return storage.FieldHandle{Table: t.Name, Column: IDField}
}

// Columns returns all column names in presentation order: id first, the
// declared fields sorted by name, the common timestamps last.
func (t *TableDef) Columns() []string {
	own := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		own = append(own, name)
	}
	sort.Strings(own)

	out := make([]string, 0, len(own)+3)
	out = append(out, IDField)
	out = append(out, own...)
	out = append(out, CreateDateField, WriteDateField)
	return out
}

// Registry maps table names to their definitions
type Registry struct {
	tables map[string]*TableDef
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*TableDef)}
}

// Define registers a table. It fails on invalid names or duplicate
// registration.
func (r *Registry) Define(name string, fields map[string]FieldSpec) error {
	def := &TableDef{Name: name, Fields: fields}
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.tables[name]; exists {
		return dmlerrors.SchemaError(fmt.Sprintf("table '%s' is already registered", name))
	}
	r.tables[name] = def
	return nil
}

// Table looks up a registered table
func (r *Registry) Table(name string) (*TableDef, error) {
	def, ok := r.tables[name]
	if !ok {
		return nil, dmlerrors.SchemaError(fmt.Sprintf("unknown table '%s'", name))
	}
	return def, nil
}

// TableNames returns the registered table names, sorted
func (r *Registry) TableNames() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type registryJSON struct {
	Tables map[string]struct {
		Fields map[string]FieldSpec `json:"fields"`
	} `json:"tables"`
}

// RegistryFromJSON loads a registry from its JSON form:
//
//	{"tables": {"users": {"fields": {"name": {"type": "text"}}}}}
func RegistryFromJSON(b []byte) (*Registry, error) {
	var raw registryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrSchema, "invalid registry JSON", err)
	}
	r := NewRegistry()
	for name, t := range raw.Tables {
		if err := r.Define(name, t.Fields); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ToJSON serializes the registry
func (r *Registry) ToJSON() ([]byte, error) {
	out := registryJSON{Tables: make(map[string]struct {
		Fields map[string]FieldSpec `json:"fields"`
	}, len(r.tables))}
	for name, def := range r.tables {
		out.Tables[name] = struct {
			Fields map[string]FieldSpec `json:"fields"`
		}{Fields: def.Fields}
	}
	return json.Marshal(out)
}

var _ storage.FieldResolver = (*TableDef)(nil)
