package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmlkit/dmlkit/dmlkit"
	"github.com/dmlkit/dmlkit/internal/cliopt"
	"github.com/dmlkit/dmlkit/internal/cliutil"
)

// RunDelete removes records selected by --ids or by a criteria filter.
func RunDelete(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var table, idsArg, where string
	fs.StringVar(&table, "table", "", "table name")
	fs.StringVar(&table, "t", "", "table name")
	fs.StringVar(&idsArg, "ids", "", "comma-separated record ids")
	fs.StringVar(&where, "where", "", "criteria JSON for batch delete")
	fs.StringVar(&where, "w", "", "criteria JSON for batch delete")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if table == "" {
		fmt.Fprintln(os.Stderr, "missing --table")
		return 2
	}
	if idsArg == "" && where == "" {
		fmt.Fprintln(os.Stderr, "either --ids or --where required")
		return 2
	}

	ctx := context.Background()
	mgr, err := openManager(ctx, g)
	if err != nil {
		return fail(err)
	}
	defer mgr.Close()

	ids, err := cliutil.ParseIDs(idsArg)
	if err != nil {
		return fail(err)
	}
	if len(ids) == 0 {
		cs, err := parseCriteria(where)
		if err != nil {
			return fail(err)
		}
		ids, err = mgr.Search(ctx, table, cs, dmlkit.SearchOptions{})
		if err != nil {
			return fail(err)
		}
	}

	if err := mgr.Delete(ctx, table, ids); err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stdout, "deleted %d records\n", len(ids))
	return 0
}
