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

// RunUpdate writes the same values to records selected by --ids or by
// a criteria filter.
func RunUpdate(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var table, idsArg, where string
	var sets setArgs
	fs.StringVar(&table, "table", "", "table name")
	fs.StringVar(&table, "t", "", "table name")
	fs.StringVar(&idsArg, "ids", "", "comma-separated record ids")
	fs.StringVar(&where, "where", "", "criteria JSON for batch update")
	fs.StringVar(&where, "w", "", "criteria JSON for batch update")
	fs.Var(&sets, "set", "set field value key=value (repeatable)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if table == "" || len(sets) == 0 {
		fmt.Fprintln(os.Stderr, "missing --table or --set")
		return 2
	}
	if idsArg == "" && where == "" {
		fmt.Fprintln(os.Stderr, "either --ids or --where required")
		return 2
	}

	values, err := cliutil.ParseAssignments(sets)
	if err != nil {
		return fail(err)
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

	if err := mgr.Update(ctx, table, ids, values); err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stdout, "updated %d records\n", len(ids))
	return 0
}
