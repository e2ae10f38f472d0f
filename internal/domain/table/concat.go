package table

// Concat stacks tables vertically. The result carries the union of all
// columns in first-seen order; cells for columns an input lacks are
// missing. Rows keep input order and receive a fresh positional index.
func Concat(tables ...*Table) *Table {
	var columns []string
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		total += len(t.Rows)
	}

	out := New(columns...)
	out.Rows = make([][]Value, 0, total)
	for _, t := range tables {
		if t == nil {
			continue
		}
		mapping := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			mapping[i] = out.ColumnIndex(c)
		}
		for _, r := range t.Rows {
			row := make([]Value, len(columns))
			for i, v := range r {
				row[mapping[i]] = v
			}
			out.Rows = append(out.Rows, row)
		}
	}
	out.ResetIndex()
	return out
}
