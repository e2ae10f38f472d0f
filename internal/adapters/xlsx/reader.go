package xlsx

import (
	"context"
	"strconv"
	"strings"

	"github.com/black-mountain1/comb-excel/internal/domain/table"
	"github.com/xuri/excelize/v2"
)

// Built-in number format ids that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// ReadTable loads the first sheet of the workbook at path. The first
// non-blank row is the header; blank header cells are named column_N and repeated names get
// a .N suffix. Numeric cells with a date format become dates. Fully empty
// rows are skipped.
func ReadTable(ctx context.Context, path string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ReadError{Path: path, Err: ErrNoSheet}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return table.New(), nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	c := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	out := table.New(headers(rows[start], width)...)
	for i, r := range rows[start+1:] {
		if blankRow(r) {
			continue
		}
		row := make([]table.Value, len(r))
		for col, raw := range r {
			cell, err := excelize.CoordinatesToCellName(col+1, start+i+2)
			if err != nil {
				return nil, &ReadError{Path: path, Err: err}
			}
			if row[col], err = c.value(cell, raw); err != nil {
				return nil, &ReadError{Path: path, Err: err}
			}
		}
		if err := out.Append(row...); err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
	}
	return out, nil
}

func headers(first []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		name := ""
		if i < len(first) {
			name = strings.TrimSpace(first[i])
		}
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

func blankRow(r []string) bool {
	for _, s := range r {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

type cellReader struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool
}

// value types one raw cell using its stored type and number format.
func (c *cellReader) value(cell, raw string) (table.Value, error) {
	if raw == "" {
		return table.Missing(), nil
	}
	typ, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return table.Value{}, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return table.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula,
		excelize.CellTypeError, excelize.CellTypeDate:
		// ISO 8601 date cells stay text; the tier resolver parses them.
		return table.Text(raw), nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return table.Text(raw), nil
	}
	isDate, err := c.isDateCell(cell)
	if err != nil {
		return table.Value{}, err
	}
	if isDate {
		t, err := excelize.ExcelDateToTime(n, false)
		if err == nil {
			return table.Date(t), nil
		}
	}
	return table.Number(n), nil
}

func (c *cellReader) isDateCell(cell string) (bool, error) {
	idx, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil {
		return false, err
	}
	if idx == 0 {
		return false, nil
	}
	if v, ok := c.dateStyles[idx]; ok {
		return v, nil
	}
	style, err := c.f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	isDate := builtinDateFormats[style.NumFmt]
	if style.CustomNumFmt != nil {
		isDate = isDateFormat(*style.CustomNumFmt)
	}
	c.dateStyles[idx] = isDate
	return isDate, nil
}

// isDateFormat reports whether a custom number format renders a date or
// time. Quoted literals, escaped characters and bracketed sections such as
// locale or colour tags are ignored.
func isDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ymdhs")
}
