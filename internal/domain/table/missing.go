package table

// ColumnCount pairs a column with its number of missing cells.
type ColumnCount struct {
	Column  string
	Missing int
}

// MissingCounts counts missing cells per column, in column order. Blank
// text cells count as missing. t is not modified.
func MissingCounts(t *Table) []ColumnCount {
	counts := make([]ColumnCount, len(t.Columns))
	for i, c := range t.Columns {
		counts[i].Column = c
	}
	for _, r := range t.Rows {
		for i, v := range r {
			if isBlank(v) {
				counts[i].Missing++
			}
		}
	}
	return counts
}

func isBlank(v Value) bool {
	return v.IsMissing() || (v.Kind() == KindText && v.Text() == "")
}
