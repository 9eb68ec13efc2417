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

// RunSearch lists the ids of records matching the criteria.
func RunSearch(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var table, where string
	var limit, offset int
	fs.StringVar(&table, "table", "", "table name")
	fs.StringVar(&table, "t", "", "table name")
	fs.StringVar(&where, "where", "", "criteria JSON")
	fs.StringVar(&where, "w", "", "criteria JSON")
	fs.IntVar(&limit, "limit", 0, "max results (0 = unlimited)")
	fs.IntVar(&offset, "offset", 0, "skip first N results")
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

	ids, err := mgr.Search(ctx, table, cs, dmlkit.SearchOptions{Offset: offset, Limit: limit})
	if err != nil {
		return fail(err)
	}
	switch cliutil.ParseOutputFormat(g.Format) {
	case cliutil.FormatJSON:
		cliutil.PrintJSON(os.Stdout, map[string]any{"ids": ids})
	default:
		fmt.Fprintf(os.Stdout, "%d records\n", len(ids))
		for _, id := range ids {
			fmt.Fprintln(os.Stdout, id)
		}
	}
	return 0
}
