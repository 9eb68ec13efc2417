package dmlkit

// OutputFormat selects the shape results are converted to
type OutputFormat string

const (
	// FormatRecords returns one map per row
	FormatRecords OutputFormat = "records"
	// FormatTabular returns a column list plus row tuples
	FormatTabular OutputFormat = "tabular"
)

// Record is one row keyed by column name
type Record map[string]any

// SortSpec is one column/direction pair of an ordering clause
type SortSpec struct {
	Field      string
	Descending bool
}

// SearchOptions configures a Search call. Zero or negative offset and
// limit mean unbounded.
type SearchOptions struct {
	Offset int
	Limit  int
}

// ReadOptions configures a Read call
type ReadOptions struct {
	Fields []string
	Sort   []SortSpec
}

// SearchReadOptions configures a SearchRead call
type SearchReadOptions struct {
	Fields []string
	Sort   []SortSpec
	Offset int
	Limit  int
}

// ResultSet is the tabular result of a read: column names in
// presentation order and one tuple per row
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows
func (rs ResultSet) Len() int { return len(rs.Rows) }
