// Package postgres is the PostgreSQL storage adapter, built on the pgx
// stdlib driver.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dmlkit/dmlkit/dmlkit/storage"
	"github.com/dmlkit/dmlkit/dmlkit/storage/sqlbuilder"
)

type Adapter struct {
	DSN string
}

func New(dsn string) *Adapter {
	return &Adapter{DSN: dsn}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderDollar
}

func (a *Adapter) Dialect() storage.Dialect { return Dialect{} }

func (a *Adapter) Close() error { return nil }

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Dialect renders the Postgres spellings of the dialect-specific
// comparisons: ILIKE for containment, native ~ and ~* for regexps.
type Dialect struct{}

func (Dialect) Contains(b storage.Builder, col string, needle string) string {
	return col + " ILIKE " + b.Arg("%"+needle+"%")
}

func (Dialect) Regexp(b storage.Builder, col string, pattern string, ci bool) string {
	op := " ~ "
	if ci {
		op = " ~* "
	}
	return col + op + b.Arg(pattern)
}
