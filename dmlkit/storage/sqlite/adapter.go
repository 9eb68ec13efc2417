// Package sqlite is the SQLite storage adapter. The default driver is
// the CGo-free modernc.org/sqlite; see mattn.go for the CGo alternative.
// Both register a regexp() scalar function so the ~ and ~* criteria
// operators compile to working REGEXP matches.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"

	msqlite "modernc.org/sqlite"

	"github.com/dmlkit/dmlkit/dmlkit/storage"
	"github.com/dmlkit/dmlkit/dmlkit/storage/sqlbuilder"
)

// DriverName is the default, CGo-free driver
const DriverName = "sqlite"

func init() {
	// SQLite resolves X REGEXP Y as regexp(Y, X): pattern first.
	msqlite.MustRegisterDeterministicScalarFunction("regexp", 2,
		func(ctx *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			pattern, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("regexp: pattern must be text, got %T", args[0])
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("regexp: %w", err)
			}
			s, ok := args[1].(string)
			if !ok {
				// Non-text operands never match
				return int64(0), nil
			}
			if re.MatchString(s) {
				return int64(1), nil
			}
			return int64(0), nil
		})
}

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverName}
}

func NewWithDriver(path, driverName string) *Adapter {
	return &Adapter{Path: path, DriverName: driverName}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendSQLite }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) Dialect() storage.Dialect { return Dialect{} }

func (a *Adapter) Close() error { return nil }

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dsn appends the busy-timeout and foreign-key tuning in whichever
// parameter form the configured driver understands
func (a *Adapter) dsn() string {
	sep := "?"
	if strings.Contains(a.Path, "?") {
		sep = "&"
	}
	if a.DriverName == CGoDriverName {
		return a.Path + sep + "_busy_timeout=5000&_foreign_keys=on"
	}
	return a.Path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Dialect renders the SQLite spellings: plain LIKE is case-insensitive
// for ASCII, and REGEXP routes to the registered regexp() function with
// an inline (?i) flag for the case-insensitive match.
type Dialect struct{}

func (Dialect) Contains(b storage.Builder, col string, needle string) string {
	return col + " LIKE " + b.Arg("%"+needle+"%")
}

func (Dialect) Regexp(b storage.Builder, col string, pattern string, ci bool) string {
	if ci {
		pattern = "(?i)" + pattern
	}
	return col + " REGEXP " + b.Arg(pattern)
}
