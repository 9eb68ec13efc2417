package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmlkit/dmlkit/dmlkit"
	"github.com/dmlkit/dmlkit/internal/cliutil"
)

// printResultSet renders rows either as a record list (json) or a
// plain column-aligned table (pretty).
func printResultSet(format cliutil.OutputFormat, rs dmlkit.ResultSet) {
	if format == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, rs.Records())
		return
	}

	widths := make([]int, len(rs.Columns))
	cells := make([][]string, 0, rs.Len()+1)
	header := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c
		widths[i] = len(c)
	}
	cells = append(cells, header)
	for _, row := range rs.Rows {
		line := make([]string, len(row))
		for i, v := range row {
			s := fmt.Sprintf("%v", v)
			if v == nil {
				s = ""
			}
			line[i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
		cells = append(cells, line)
	}

	for _, line := range cells {
		parts := make([]string, len(line))
		for i, s := range line {
			parts[i] = s + strings.Repeat(" ", widths[i]-len(s))
		}
		fmt.Fprintln(os.Stdout, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	fmt.Fprintf(os.Stdout, "(%d rows)\n", rs.Len())
}
