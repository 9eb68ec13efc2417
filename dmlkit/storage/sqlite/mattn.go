package sqlite

import (
	"database/sql"
	"regexp"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// CGoDriverName selects the mattn/go-sqlite3 driver with the regexp()
// function installed per connection. Use NewWithDriver(path,
// CGoDriverName) when the CGo driver is preferred.
const CGoDriverName = "sqlite3_dmlkit"

func init() {
	sql.Register(CGoDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", func(pattern, s string) (bool, error) {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return false, err
				}
				return re.MatchString(s), nil
			}, true)
		},
	})
}
