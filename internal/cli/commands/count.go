package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmlkit/dmlkit/internal/cliopt"
	"github.com/dmlkit/dmlkit/internal/cliutil"
)

// RunCount prints the number of records matching the criteria.
func RunCount(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var table, where string
	fs.StringVar(&table, "table", "", "table name")
	fs.StringVar(&table, "t", "", "table name")
	fs.StringVar(&where, "where", "", "criteria JSON")
	fs.StringVar(&where, "w", "", "criteria JSON")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if table == "" {
		fmt.Fprintln(os.Stderr, "missing --table")
		return 2
	}

	cs, err := parseCriteria(where)
	if err != nil {
		return fail(err)
	}

	ctx := context.Background()
	mgr, err := openManager(ctx, g)
	if err != nil {
		return fail(err)
	}
	defer mgr.Close()

	n, err := mgr.SearchCount(ctx, table, cs)
	if err != nil {
		return fail(err)
	}
	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, map[string]any{"count": n})
		return 0
	}
	fmt.Fprintln(os.Stdout, n)
	return 0
}
