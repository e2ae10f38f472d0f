package table

import (
	"strconv"
	"strings"
)

// JoinStats summarises a left join.
type JoinStats struct {
	Matched   int // left rows with at least one right match
	Unmatched int // left rows kept with missing right-hand cells
	FanOut    int // extra rows produced by keys with several right matches
}

// SharedColumns returns the columns present in both tables, in left order.
func SharedColumns(left, right *Table) []string {
	var shared []string
	for _, c := range left.Columns {
		if right.HasColumn(c) {
			shared = append(shared, c)
		}
	}
	return shared
}

// LeftJoin keeps every left row and attaches the non-key columns of each
// matching right row. Rows with several matches fan out in right-table
// order. A key containing a missing cell never matches. The result has the
// left columns followed by the right non-key columns and a fresh index.
func LeftJoin(left, right *Table, on []string) (*Table, JoinStats) {
	var stats JoinStats

	leftKey := make([]int, len(on))
	rightKey := make([]int, len(on))
	isKey := make(map[string]bool, len(on))
	for i, c := range on {
		leftKey[i] = left.ColumnIndex(c)
		rightKey[i] = right.ColumnIndex(c)
		isKey[c] = true
	}

	var extra []int
	columns := append([]string(nil), left.Columns...)
	for i, c := range right.Columns {
		if !isKey[c] && !left.HasColumn(c) {
			extra = append(extra, i)
			columns = append(columns, c)
		}
	}

	index := make(map[string][]int, len(right.Rows))
	for i, r := range right.Rows {
		if k, ok := compositeKey(r, rightKey); ok {
			index[k] = append(index[k], i)
		}
	}

	out := New(columns...)
	out.Rows = make([][]Value, 0, len(left.Rows))
	width := len(left.Columns)
	for _, l := range left.Rows {
		var matches []int
		if k, ok := compositeKey(l, leftKey); ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			row := make([]Value, len(columns))
			copy(row, l)
			out.Rows = append(out.Rows, row)
			stats.Unmatched++
			continue
		}
		stats.Matched++
		stats.FanOut += len(matches) - 1
		for _, m := range matches {
			row := make([]Value, len(columns))
			copy(row, l)
			for j, rc := range extra {
				row[width+j] = right.Rows[m][rc]
			}
			out.Rows = append(out.Rows, row)
		}
	}
	out.ResetIndex()
	return out, stats
}

// compositeKey length-prefixes each part so no text content can shift a
// boundary between columns.
func compositeKey(row []Value, cols []int) (string, bool) {
	var b strings.Builder
	for _, c := range cols {
		v := row[c]
		if isBlank(v) {
			return "", false
		}
		k := v.Key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String(), true
}
