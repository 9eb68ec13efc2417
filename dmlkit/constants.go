package dmlkit

const (
	// IDField is the unique identifier column present on every table
	IDField = "id"
	// CreateDateField records when a row was inserted
	CreateDateField = "create_date"
	// WriteDateField records the last update to a row
	WriteDateField = "write_date"
)
