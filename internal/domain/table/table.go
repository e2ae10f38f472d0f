package table

import "fmt"

// Table is an ordered set of rows over named columns. Index carries one
// label per row; it starts as the row position and travels with the row
// when rows are reordered.
type Table struct {
	Columns []string
	Rows    [][]Value
	Index   []int
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of name or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is one of the columns.
func (t *Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// Append adds a row labelled with the next positional index. Short rows are
// padded with missing values; rows wider than the header are rejected.
func (t *Table) Append(row ...Value) error {
	if len(row) > len(t.Columns) {
		return fmt.Errorf("%w: %d cells for %d columns", ErrRowWidth, len(row), len(t.Columns))
	}
	r := make([]Value, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
	t.Index = append(t.Index, len(t.Rows)-1)
	return nil
}

// Cell returns the value at row i in column name; missing if the column is absent.
func (t *Table) Cell(i int, name string) Value {
	c := t.ColumnIndex(name)
	if c < 0 {
		return Missing()
	}
	return t.Rows[i][c]
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]Value, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]Value(nil), r...)
	}
	out.Index = append([]int(nil), t.Index...)
	return out
}

// ResetIndex relabels every row with its current position.
func (t *Table) ResetIndex() {
	t.Index = make([]int, len(t.Rows))
	for i := range t.Index {
		t.Index[i] = i
	}
}

// Reorder returns a new table whose i-th row is t's perm[i]-th row. Index
// labels move with their rows.
func (t *Table) Reorder(perm []int) *Table {
	out := New(t.Columns...)
	out.Rows = make([][]Value, len(perm))
	out.Index = make([]int, len(perm))
	for i, p := range perm {
		out.Rows[i] = t.Rows[p]
		out.Index[i] = t.Index[p]
	}
	return out
}

// Filter returns a new table holding the rows for which keep is true, in
// their original order and with their original labels.
func (t *Table) Filter(keep func(i int, row []Value) bool) *Table {
	perm := make([]int, 0, len(t.Rows))
	for i, r := range t.Rows {
		if keep(i, r) {
			perm = append(perm, i)
		}
	}
	return t.Reorder(perm)
}
