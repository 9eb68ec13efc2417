package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmlkit/dmlkit/dmlkit"
	"github.com/dmlkit/dmlkit/dmlkit/config"
	"github.com/dmlkit/dmlkit/dmlkit/criteria"
	"github.com/dmlkit/dmlkit/dmlkit/storage"
	"github.com/dmlkit/dmlkit/dmlkit/storage/postgres"
	"github.com/dmlkit/dmlkit/dmlkit/storage/sqlite"
	"github.com/dmlkit/dmlkit/internal/cliopt"
)

// openManager loads the table registry and connects the backend chosen
// by the global flags. The postgres DSN falls back to DMLKIT_DB_* env
// credentials when the flag is empty.
func openManager(ctx context.Context, g cliopt.GlobalOptions) (*dmlkit.Manager, error) {
	data, err := os.ReadFile(g.TablesFile)
	if err != nil {
		return nil, fmt.Errorf("read table registry: %w", err)
	}
	registry, err := dmlkit.RegistryFromJSON(data)
	if err != nil {
		return nil, err
	}

	adapter, err := resolveAdapter(g)
	if err != nil {
		return nil, err
	}
	return dmlkit.Open(ctx, adapter, registry, dmlkit.DefaultOptions())
}

func resolveAdapter(g cliopt.GlobalOptions) (storage.Adapter, error) {
	switch strings.ToLower(g.Backend) {
	case "sqlite":
		return sqlite.New(g.SQLitePath), nil
	case "postgres", "pg":
		dsn := g.PostgresDSN
		if dsn == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			dsn = cfg.DB.PostgresDSN()
		}
		return postgres.New(dsn), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", g.Backend)
	}
}

// parseCriteria decodes the -w flag; an empty flag means no filter
func parseCriteria(where string) (criteria.Structure, error) {
	if strings.TrimSpace(where) == "" {
		return nil, nil
	}
	return criteria.ParseJSON([]byte(where))
}

// parseSort decodes "field,other:desc" style sort lists
func parseSort(s string) []dmlkit.SortSpec {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	specs := make([]dmlkit.SortSpec, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		field, dir, found := strings.Cut(p, ":")
		specs = append(specs, dmlkit.SortSpec{
			Field:      field,
			Descending: found && strings.EqualFold(dir, "desc"),
		})
	}
	return specs
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// setArgs is a custom flag type for repeatable --set flags
type setArgs []string

func (s *setArgs) String() string { return strings.Join(*s, ",") }
func (s *setArgs) Set(v string) error {
	*s = append(*s, v)
	return nil
}
