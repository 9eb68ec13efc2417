package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
	"github.com/dmlkit/dmlkit/internal/cliopt"
	"github.com/dmlkit/dmlkit/internal/cliutil"
)

// RunGet prints one or more field values of a single record.
func RunGet(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var table, fieldsArg string
	var id int64
	fs.StringVar(&table, "table", "", "table name")
	fs.StringVar(&table, "t", "", "table name")
	fs.Int64Var(&id, "id", 0, "record id")
	fs.StringVar(&fieldsArg, "fields", "", "comma-separated fields")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	fields := cliutil.ParseFields(fieldsArg)
	if table == "" || id == 0 || len(fields) == 0 {
		fmt.Fprintln(os.Stderr, "missing --table, --id or --fields")
		return 2
	}

	ctx := context.Background()
	mgr, err := openManager(ctx, g)
	if err != nil {
		return fail(err)
	}
	defer mgr.Close()

	vals, err := mgr.GetValues(ctx, table, id, fields)
	if err != nil {
		if dmlerrors.IsKind(err, dmlerrors.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "record %d not found\n", id)
			return 1
		}
		return fail(err)
	}

	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		rec := make(map[string]any, len(fields))
		for i, f := range fields {
			rec[f] = vals[i]
		}
		cliutil.PrintJSON(os.Stdout, rec)
		return 0
	}
	for i, f := range fields {
		fmt.Fprintf(os.Stdout, "%s: %v\n", f, vals[i])
	}
	return 0
}
