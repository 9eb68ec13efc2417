// Package storage abstracts the database-specific pieces of dmlkit:
// connection handling, placeholder style, and the few SQL constructs
// whose spelling differs between backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/dmlkit/dmlkit/dmlkit/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	Dialect() Dialect

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error
}

// Dialect renders the comparison constructs whose SQL differs per
// backend. Implementations allocate their own placeholders through the
// builder so argument order stays consistent with the surrounding
// predicate.
type Dialect interface {
	// Contains renders a case-insensitive substring match of needle
	// against the column.
	Contains(b Builder, col string, needle string) string

	// Regexp renders a regular-expression match of pattern against the
	// column, case-insensitively when ci is set.
	Regexp(b Builder, col string, pattern string, ci bool) string
}

// Builder is the placeholder allocator shared across one statement
type Builder interface {
	Arg(v any) string
	Args() []any
	Len() int
}

// FieldHandle is a resolved, schema-validated column reference
type FieldHandle struct {
	Table  string
	Column string
}

// Qualified returns the quoted table.column form for use in SQL
func (h FieldHandle) Qualified() string {
	return quoteIdent(h.Table) + "." + quoteIdent(h.Column)
}

// quoteIdent wraps an identifier in double quotes. Identifiers are
// validated against a strict name pattern at registry construction, so
// no embedded quotes are possible here.
func quoteIdent(ident string) string {
	return `"` + ident + `"`
}

// QuoteIdent exposes identifier quoting to the SQL-assembling layers
func QuoteIdent(ident string) string {
	return quoteIdent(ident)
}

// FieldResolver resolves field names against one table's known columns.
// The table registry implements it; the planner consumes it.
type FieldResolver interface {
	TableName() string
	ResolveField(name string) (FieldHandle, bool)
	DefaultOrderingField() FieldHandle
}
