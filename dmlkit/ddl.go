package dmlkit

import (
	"context"
	"fmt"
	"strings"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
	"github.com/dmlkit/dmlkit/dmlkit/storage"
)

// EnsureTables creates every registered table that does not exist yet
func (m *Manager) EnsureTables(ctx context.Context) error {
	for _, name := range m.tables.TableNames() {
		table, err := m.tables.Table(name)
		if err != nil {
			return err
		}
		ddl, err := m.tableDDL(table)
		if err != nil {
			return err
		}
		m.logQuery(ctx, "ensure_tables", ddl, 0)
		if _, err := m.db.ExecContext(ctx, ddl); err != nil {
			return dmlerrors.Wrap(dmlerrors.ErrSQL, fmt.Sprintf("create table '%s'", name), err)
		}
	}
	return nil
}

func (m *Manager) tableDDL(table *TableDef) (string, error) {
	pg := m.adapter.Backend() == storage.BackendPostgres

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(storage.QuoteIdent(table.Name))
	sb.WriteString(" (\n  ")
	if pg {
		sb.WriteString(storage.QuoteIdent(IDField) + " BIGSERIAL PRIMARY KEY")
	} else {
		sb.WriteString(storage.QuoteIdent(IDField) + " INTEGER PRIMARY KEY AUTOINCREMENT")
	}

	for _, col := range table.Columns() {
		if col == IDField {
			continue
		}
		var ft FieldType
		if col == CreateDateField || col == WriteDateField {
			ft = FieldDateTime
		} else {
			ft = table.Fields[col].Type
		}
		sqlType, err := columnType(ft, pg)
		if err != nil {
			return "", dmlerrors.SchemaError(fmt.Sprintf("table '%s', column '%s': %v", table.Name, col, err))
		}
		sb.WriteString(",\n  ")
		sb.WriteString(storage.QuoteIdent(col))
		sb.WriteString(" ")
		sb.WriteString(sqlType)
	}
	sb.WriteString("\n)")
	return sb.String(), nil
}

func columnType(ft FieldType, pg bool) (string, error) {
	switch ft {
	case FieldInteger:
		if pg {
			return "BIGINT", nil
		}
		return "INTEGER", nil
	case FieldFloat:
		return "DOUBLE PRECISION", nil
	case FieldText:
		return "TEXT", nil
	case FieldBool:
		if pg {
			return "BOOLEAN", nil
		}
		return "INTEGER", nil
	case FieldDateTime:
		if pg {
			return "TIMESTAMPTZ", nil
		}
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unknown field type '%s'", ft)
	}
}
