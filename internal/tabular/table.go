// Package tabular treats spreadsheets in the blob store as tables. A table
// is a whole-file blob; there is no row-level primitive, so every mutation
// is load-all/modify/save-all and the last writer wins.
package tabular

// Table is an ordered-column spreadsheet table. Cells missing from a row
// read as the empty string.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// NewTable creates an empty table with the given column order.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds a row. Keys not present in the header are dropped on encode.
func (t *Table) Append(row map[string]string) {
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends a column to the header (with empty cells) if absent.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Header = append(t.Header, name)
	}
}

// Get returns the cell value for column col in row i, or "".
func (t *Table) Get(i int, col string) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][col]
}
