package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmlkit/dmlkit/internal/cliopt"
)

// RunInit creates every table of the registry that does not exist yet.
func RunInit(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	mgr, err := openManager(ctx, g)
	if err != nil {
		return fail(err)
	}
	defer mgr.Close()

	if err := mgr.EnsureTables(ctx); err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stdout, "initialized %d tables\n", len(mgr.Registry().TableNames()))
	return 0
}
