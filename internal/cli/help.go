package cli

import (
	"fmt"
	"io"
)

func PrintRootHelp(w io.Writer) {
	fmt.Fprintln(w, `dmlkit — criteria-filtered CRUD over sqlite/postgres

USAGE
  dmlkit [global flags] <command> [args]

GLOBAL FLAGS
  --backend sqlite|postgres
  --sqlite-path <file.db>
  --pg-dsn <dsn>              (or DMLKIT_DB_* environment variables)
  --tables <tables.json>
  --format pretty|json

COMMANDS
  init                                    create registered tables
  create -t <table> --set k=v...          insert one record
  create -t <table> --json                insert JSON lines from stdin
  search -t <table> -w <criteria> [--limit N] [--offset N]
  read -t <table> --ids 1,2 [--fields a,b] [--sort f:desc]
  search-read -t <table> -w <criteria> [--fields ...] [--sort ...]
  get -t <table> --id N --fields a,b
  count -t <table> [-w <criteria>]
  update -t <table> --ids 1,2 --set k=v...
  delete -t <table> --ids 1,2 | -w <criteria>

Criteria are a JSON array in prefix notation: markers "&" / "|"
followed by [field, op, value] triplets, e.g.
  '["&", ["amount", ">", 500], ["name", "ilike", "as"]]'`)
}
