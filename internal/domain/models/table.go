package models

// Table is the raw content of a price file after header normalization.
//
// Columns holds the header names in file order (with aliases such as
// "Price" already renamed to "Date"). Every entry in Rows has exactly
// len(Columns) cells; short lines are padded with empty strings.
//
// Row numbers used elsewhere (e.g., DroppedRecord.Row) are 1-based indexes
// into Rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
