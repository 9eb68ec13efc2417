package cliopt

import "flag"

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
	TablesFile  string

	Format string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:    "sqlite",
		SQLitePath: "dmlkit.db",
		TablesFile: "tables.json",
		Format:     "pretty",
	}
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")

	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file path")

	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN (overrides DMLKIT_DB_* env)")

	fs.StringVar(&g.TablesFile, "tables", g.TablesFile, "table registry JSON file")

	fs.StringVar(&g.Format, "format", g.Format, "output format: pretty|json")
}
