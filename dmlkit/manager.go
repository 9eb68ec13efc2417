// Package dmlkit provides uniform, table-agnostic CRUD access to a
// relational store. Record filters are expressed as prefix-notation
// criteria structures (see the criteria package) and compiled to SQL
// predicates by the planner; everything database-specific sits behind a
// storage adapter.
package dmlkit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dmlkit/dmlkit/dmlkit/criteria"
	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
	"github.com/dmlkit/dmlkit/dmlkit/planner"
	"github.com/dmlkit/dmlkit/dmlkit/storage"
	"github.com/dmlkit/dmlkit/dmlkit/storage/sqlbuilder"
)

// Options configures a Manager
type Options struct {
	// Output is the default result shape for callers that use Format
	Output OutputFormat
	// Logger receives query-level debug events; nil disables logging
	Logger *slog.Logger
	// Now supplies timestamps for create_date / write_date
	Now func() time.Time
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Output: FormatRecords,
		Now:    time.Now,
	}
}

// Manager executes CRUD operations against the tables of one registry
// through one storage adapter. It is safe for concurrent use; all state
// is per-call.
type Manager struct {
	adapter storage.Adapter
	db      *sql.DB
	tables  *Registry
	opts    Options
}

// Open connects the adapter and returns a ready manager
func Open(ctx context.Context, adapter storage.Adapter, registry *Registry, opts Options) (*Manager, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Output == "" {
		opts.Output = FormatRecords
	}
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrIO, "connect to database", err)
	}
	return &Manager{adapter: adapter, db: db, tables: registry, opts: opts}, nil
}

// Close releases the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return dmlerrors.Wrap(dmlerrors.ErrIO, "close database", err)
		}
	}
	return m.adapter.Close()
}

// Registry returns the table registry
func (m *Manager) Registry() *Registry { return m.tables }

// DB returns the underlying database handle (for advanced use)
func (m *Manager) DB() *sql.DB { return m.db }

// Output returns the manager's default output format
func (m *Manager) Output() OutputFormat { return m.opts.Output }

// Create inserts one or more records and returns their new ids. All
// records must carry the same field set; create_date and write_date are
// filled in unless supplied.
func (m *Manager) Create(ctx context.Context, tableName string, records []Record) ([]int64, error) {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []int64{}, nil
	}

	fields, err := insertColumns(table, records)
	if err != nil {
		return nil, err
	}

	now := m.opts.Now().UTC()
	b := m.newBuilder()
	tuples := make([]string, 0, len(records))
	for _, rec := range records {
		phs := make([]string, 0, len(fields))
		for _, f := range fields {
			v, ok := rec[f]
			if !ok {
				// Only the common timestamps may be absent
				v = now
			}
			phs = append(phs, b.Arg(v))
		}
		tuples = append(tuples, "("+strings.Join(phs, ", ")+")")
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = storage.QuoteIdent(f)
	}
	query := "INSERT INTO " + storage.QuoteIdent(table.Name) +
		" (" + strings.Join(quoted, ", ") + ") VALUES " +
		strings.Join(tuples, ", ") +
		" RETURNING " + storage.QuoteIdent(IDField)
	m.logQuery(ctx, "create", query, b.Len())

	rows, err := m.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "insert records", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "scan inserted id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "read inserted ids", err)
	}
	return ids, nil
}

// Search returns the ids of records matching the criteria, ascending by
// id. Empty criteria matches every record.
func (m *Manager) Search(ctx context.Context, tableName string, cs criteria.Structure, opts SearchOptions) ([]int64, error) {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return nil, err
	}

	b := m.newBuilder()
	where, err := m.whereClause(table, cs, b)
	if err != nil {
		return nil, err
	}

	idCol := table.DefaultOrderingField().Qualified()
	query := "SELECT " + idCol + " FROM " + storage.QuoteIdent(table.Name) +
		where + " ORDER BY " + idCol + " ASC" + m.pagination(b, opts.Offset, opts.Limit)
	m.logQuery(ctx, "search", query, b.Len())

	rows, err := m.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "search", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "scan id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "read ids", err)
	}
	return ids, nil
}

// Read returns the requested fields of records selected by id. The id
// column always leads the result, whether requested or not.
func (m *Manager) Read(ctx context.Context, tableName string, ids []int64, opts ReadOptions) (ResultSet, error) {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return ResultSet{}, err
	}
	cols, err := selectColumns(table, opts.Fields)
	if err != nil {
		return ResultSet{}, err
	}

	b := m.newBuilder()
	where, err := m.whereClause(table, criteria.Structure{criteria.T(IDField, criteria.OpIn, ids)}, b)
	if err != nil {
		return ResultSet{}, err
	}
	orderBy, err := buildOrderBy(table, opts.Sort)
	if err != nil {
		return ResultSet{}, err
	}

	query := "SELECT " + qualifiedList(table, cols) + " FROM " + storage.QuoteIdent(table.Name) + where + orderBy
	m.logQuery(ctx, "read", query, b.Len())
	return m.queryResultSet(ctx, query, b.Args(), cols)
}

// GetValue returns one field of one record
func (m *Manager) GetValue(ctx context.Context, tableName string, id int64, field string) (any, error) {
	vals, err := m.GetValues(ctx, tableName, id, []string{field})
	if err != nil {
		return nil, err
	}
	return vals[0], nil
}

// GetValues returns several fields of one record, in the order asked
func (m *Manager) GetValues(ctx context.Context, tableName string, id int64, fields []string) ([]any, error) {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, dmlerrors.SchemaError("no fields requested")
	}
	for _, f := range fields {
		if _, ok := table.ResolveField(f); !ok {
			return nil, dmlerrors.UnknownField(f)
		}
	}

	b := m.newBuilder()
	where, err := m.whereClause(table, criteria.Structure{criteria.T(IDField, criteria.OpEq, id)}, b)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + qualifiedList(table, fields) + " FROM " + storage.QuoteIdent(table.Name) + where
	m.logQuery(ctx, "get_values", query, b.Len())

	vals := make([]any, len(fields))
	ptrs := make([]any, len(fields))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err = m.db.QueryRowContext(ctx, query, b.Args()...).Scan(ptrs...)
	if err == sql.ErrNoRows {
		return nil, dmlerrors.NotFound(fmt.Sprintf("record %d not found in '%s'", id, tableName))
	}
	if err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrSQL, "get values", err)
	}
	for i := range vals {
		vals[i] = normalizeCell(vals[i])
	}
	return vals, nil
}

// SearchRead combines Search and Read in one statement: filter, select
// fields, sort and paginate.
func (m *Manager) SearchRead(ctx context.Context, tableName string, cs criteria.Structure, opts SearchReadOptions) (ResultSet, error) {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return ResultSet{}, err
	}
	cols, err := selectColumns(table, opts.Fields)
	if err != nil {
		return ResultSet{}, err
	}

	b := m.newBuilder()
	where, err := m.whereClause(table, cs, b)
	if err != nil {
		return ResultSet{}, err
	}
	orderBy, err := buildOrderBy(table, opts.Sort)
	if err != nil {
		return ResultSet{}, err
	}

	query := "SELECT " + qualifiedList(table, cols) + " FROM " + storage.QuoteIdent(table.Name) +
		where + orderBy + m.pagination(b, opts.Offset, opts.Limit)
	m.logQuery(ctx, "search_read", query, b.Len())
	return m.queryResultSet(ctx, query, b.Args(), cols)
}

// SearchCount returns the number of records matching the criteria
func (m *Manager) SearchCount(ctx context.Context, tableName string, cs criteria.Structure) (int64, error) {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return 0, err
	}

	b := m.newBuilder()
	where, err := m.whereClause(table, cs, b)
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM " + storage.QuoteIdent(table.Name) + where
	m.logQuery(ctx, "search_count", query, b.Len())

	var count int64
	if err := m.db.QueryRowContext(ctx, query, b.Args()...).Scan(&count); err != nil {
		return 0, dmlerrors.Wrap(dmlerrors.ErrSQL, "count records", err)
	}
	return count, nil
}

// Update writes the same values to every selected record and bumps
// write_date unless the caller set it explicitly
func (m *Manager) Update(ctx context.Context, tableName string, ids []int64, values Record) error {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return err
	}
	if len(ids) == 0 || len(values) == 0 {
		return nil
	}

	fields := make([]string, 0, len(values))
	for f := range values {
		if f == IDField {
			return dmlerrors.SchemaError("the id column cannot be updated")
		}
		if _, ok := table.ResolveField(f); !ok {
			return dmlerrors.UnknownField(f)
		}
		fields = append(fields, f)
	}
	sort.Strings(fields)
	if _, ok := values[WriteDateField]; !ok {
		fields = append(fields, WriteDateField)
	}

	now := m.opts.Now().UTC()
	b := m.newBuilder()
	sets := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			v = now
		}
		sets = append(sets, storage.QuoteIdent(f)+" = "+b.Arg(v))
	}

	where, err := m.whereClause(table, criteria.Structure{criteria.T(IDField, criteria.OpIn, ids)}, b)
	if err != nil {
		return err
	}

	query := "UPDATE " + storage.QuoteIdent(table.Name) + " SET " + strings.Join(sets, ", ") + where
	m.logQuery(ctx, "update", query, b.Len())

	if _, err := m.db.ExecContext(ctx, query, b.Args()...); err != nil {
		return dmlerrors.Wrap(dmlerrors.ErrSQL, "update records", err)
	}
	return nil
}

// Delete removes the selected records
func (m *Manager) Delete(ctx context.Context, tableName string, ids []int64) error {
	table, err := m.tables.Table(tableName)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	b := m.newBuilder()
	where, err := m.whereClause(table, criteria.Structure{criteria.T(IDField, criteria.OpIn, ids)}, b)
	if err != nil {
		return err
	}

	query := "DELETE FROM " + storage.QuoteIdent(table.Name) + where
	m.logQuery(ctx, "delete", query, b.Len())

	if _, err := m.db.ExecContext(ctx, query, b.Args()...); err != nil {
		return dmlerrors.Wrap(dmlerrors.ErrSQL, "delete records", err)
	}
	return nil
}

func (m *Manager) newBuilder() *sqlbuilder.Builder {
	return sqlbuilder.New(m.adapter.PlaceholderStyle())
}

// whereClause compiles non-empty criteria into a WHERE clause. Empty
// criteria means no filter and yields an empty clause.
func (m *Manager) whereClause(table *TableDef, cs criteria.Structure, b *sqlbuilder.Builder) (string, error) {
	if cs.Empty() {
		return "", nil
	}
	pred, err := planner.Compile(table, m.adapter.Dialect(), b, cs)
	if err != nil {
		return "", err
	}
	return " WHERE " + pred.SQL, nil
}

// pagination renders LIMIT/OFFSET. SQLite requires a LIMIT before an
// OFFSET, so an offset without limit gets the unbounded form there.
func (m *Manager) pagination(b *sqlbuilder.Builder, offset, limit int) string {
	var sb strings.Builder
	if limit > 0 {
		sb.WriteString(" LIMIT " + b.Arg(limit))
	} else if offset > 0 && m.adapter.Backend() == storage.BackendSQLite {
		sb.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		sb.WriteString(" OFFSET " + b.Arg(offset))
	}
	return sb.String()
}

func (m *Manager) queryResultSet(ctx context.Context, query string, args []any, cols []string) (ResultSet, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ResultSet{}, dmlerrors.Wrap(dmlerrors.ErrSQL, "query", err)
	}
	defer rows.Close()

	rs := ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSet{}, dmlerrors.Wrap(dmlerrors.ErrSQL, "scan row", err)
		}
		for i := range vals {
			vals[i] = normalizeCell(vals[i])
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, dmlerrors.Wrap(dmlerrors.ErrSQL, "read rows", err)
	}
	return rs, nil
}

func (m *Manager) logQuery(ctx context.Context, op, query string, argc int) {
	if m.opts.Logger == nil {
		return
	}
	m.opts.Logger.DebugContext(ctx, "dmlkit query", "op", op, "sql", query, "args", argc)
}

// insertColumns determines the column list for an insert: the first
// record's fields sorted by name, with the common timestamps appended
// when absent. Every record must carry the same field set.
func insertColumns(table *TableDef, records []Record) ([]string, error) {
	first := records[0]
	fields := make([]string, 0, len(first)+2)
	for f := range first {
		if f == IDField {
			return nil, dmlerrors.SchemaError("the id column is assigned by the database")
		}
		if _, ok := table.ResolveField(f); !ok {
			return nil, dmlerrors.UnknownField(f)
		}
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for i, rec := range records[1:] {
		if len(rec) != len(first) {
			return nil, dmlerrors.SchemaError(fmt.Sprintf("record %d has a different field set", i+1))
		}
		for f := range rec {
			if _, ok := first[f]; !ok {
				return nil, dmlerrors.SchemaError(fmt.Sprintf("record %d has a different field set", i+1))
			}
		}
	}

	if _, ok := first[CreateDateField]; !ok {
		fields = append(fields, CreateDateField)
	}
	if _, ok := first[WriteDateField]; !ok {
		fields = append(fields, WriteDateField)
	}
	return fields, nil
}

// selectColumns resolves the requested fields, prepending id. No fields
// means every column of the table.
func selectColumns(table *TableDef, fields []string) ([]string, error) {
	if len(fields) == 0 {
		return table.Columns(), nil
	}
	out := make([]string, 0, len(fields)+1)
	out = append(out, IDField)
	for _, f := range fields {
		if f == IDField {
			continue
		}
		if _, ok := table.ResolveField(f); !ok {
			return nil, dmlerrors.UnknownField(f)
		}
		out = append(out, f)
	}
	return out, nil
}

// qualifiedList renders a comma-separated list of qualified columns
func qualifiedList(table *TableDef, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		handle, _ := table.ResolveField(c)
		parts[i] = handle.Qualified()
	}
	return strings.Join(parts, ", ")
}
