package table

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order when a date arrives as text.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2 Jan 2006",
}

// maxExcelSerial is 9999-12-31, the last day Excel can represent.
const maxExcelSerial = 2958465

// ParseDate converts a cell to a time. Dates pass through, numbers are read
// as Excel serial dates (1900 system) and text is matched against the
// supported layouts.
func ParseDate(v Value) (time.Time, error) {
	switch v.Kind() {
	case KindDate:
		return v.Date(), nil
	case KindNumber:
		n := v.Number()
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n >= maxExcelSerial+1 {
			return time.Time{}, fmt.Errorf("serial %v out of range", n)
		}
		return excelize.ExcelDateToTime(n, false)
	case KindText:
		s := strings.TrimSpace(v.Text())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %s to date", v.Kind())
	}
}

// NormalizeDates returns a copy of t with column converted to date values.
// Missing and blank cells stay missing. The first unparseable cell aborts
// with a SchemaError naming its row.
func NormalizeDates(t *Table, column string) (*Table, error) {
	c := t.ColumnIndex(column)
	if c < 0 {
		if t.Len() == 0 {
			return t.Clone(), nil
		}
		return nil, &SchemaError{Column: column, Row: -1, Reason: "column not found"}
	}
	out := t.Clone()
	for i, r := range out.Rows {
		if isBlank(r[c]) {
			r[c] = Missing()
			continue
		}
		d, err := ParseDate(r[c])
		if err != nil {
			return nil, &SchemaError{Column: column, Row: i, Reason: "unparseable date", Err: err}
		}
		r[c] = Date(d)
	}
	return out, nil
}
