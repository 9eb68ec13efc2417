package main

import (
	"os"

	"github.com/dmlkit/dmlkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
