package dmlkit

import (
	"strings"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// buildOrderBy renders the ORDER BY clause for a table. An empty sort
// list orders ascending by id, matching the original record ordering.
func buildOrderBy(table *TableDef, sort []SortSpec) (string, error) {
	if len(sort) == 0 {
		return " ORDER BY " + table.DefaultOrderingField().Qualified() + " ASC", nil
	}

	parts := make([]string, 0, len(sort))
	for _, spec := range sort {
		handle, ok := table.ResolveField(spec.Field)
		if !ok {
			return "", dmlerrors.UnknownField(spec.Field)
		}
		dir := " ASC"
		if spec.Descending {
			dir = " DESC"
		}
		parts = append(parts, handle.Qualified()+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
