package dmlkit

// Records converts the tabular result into one map per row
func (rs ResultSet) Records() []Record {
	if len(rs.Rows) == 0 {
		return []Record{}
	}
	out := make([]Record, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := make(Record, len(rs.Columns))
		for i, col := range rs.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Format renders the result set in the requested output shape. The
// returned value marshals cleanly to JSON in either form.
func (rs ResultSet) Format(format OutputFormat) any {
	if format == FormatTabular {
		return rs
	}
	return rs.Records()
}

// normalizeCell converts driver-specific scan results into plain Go
// values: byte slices become strings so both backends present text the
// same way.
func normalizeCell(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
