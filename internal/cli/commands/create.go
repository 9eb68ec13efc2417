package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dmlkit/dmlkit/dmlkit"
	"github.com/dmlkit/dmlkit/internal/cliopt"
	"github.com/dmlkit/dmlkit/internal/cliutil"
)

// RunCreate inserts records, either from repeated --set flags (one
// record) or as JSON lines on stdin (--json).
func RunCreate(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var table string
	var jsonMode bool
	var sets setArgs
	fs.StringVar(&table, "table", "", "table name")
	fs.StringVar(&table, "t", "", "table name")
	fs.BoolVar(&jsonMode, "json", false, "read JSON lines from stdin")
	fs.Var(&sets, "set", "set field value key=value (repeatable)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if table == "" {
		fmt.Fprintln(os.Stderr, "missing --table")
		return 2
	}

	var records []dmlkit.Record
	if jsonMode {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var rec dmlkit.Record
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return fail(fmt.Errorf("invalid record JSON: %w", err))
			}
			records = append(records, rec)
		}
		if err := scanner.Err(); err != nil {
			return fail(err)
		}
	} else if len(sets) > 0 {
		rec, err := cliutil.ParseAssignments(sets)
		if err != nil {
			return fail(err)
		}
		records = []dmlkit.Record{rec}
	} else {
		fmt.Fprintln(os.Stderr, "either --json or --set flags required")
		return 2
	}

	ctx := context.Background()
	mgr, err := openManager(ctx, g)
	if err != nil {
		return fail(err)
	}
	defer mgr.Close()

	ids, err := mgr.Create(ctx, table, records)
	if err != nil {
		return fail(err)
	}
	switch cliutil.ParseOutputFormat(g.Format) {
	case cliutil.FormatJSON:
		cliutil.PrintJSON(os.Stdout, map[string]any{"ids": ids})
	default:
		fmt.Fprintf(os.Stdout, "created %d records: %v\n", len(ids), ids)
	}
	return 0
}
