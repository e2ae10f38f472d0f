// Package testsheets builds spreadsheet fixtures for tests.
package testsheets

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet of a fixture workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Write saves a single-sheet workbook at path. Row cells may be string,
// numbers, bool, time.Time or nil for an empty cell.
func Write(tb testing.TB, path string, header []string, rows ...[]any) string {
	tb.Helper()
	return WriteSheets(tb, path, Sheet{Header: header, Rows: rows})
}

// WriteSheets saves a workbook with the given sheets in order. The first
// sheet replaces the default Sheet1 when it is named.
func WriteSheets(tb testing.TB, path string, sheets ...Sheet) string {
	tb.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		name := s.Name
		if name == "" {
			name = "Sheet" + strconv.Itoa(i+1)
		}
		if i == 0 {
			if name != "Sheet1" {
				if err := f.SetSheetName("Sheet1", name); err != nil {
					tb.Fatalf("rename sheet: %v", err)
				}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			tb.Fatalf("new sheet %s: %v", name, err)
		}

		if s.Header != nil {
			header := make([]any, len(s.Header))
			for j, h := range s.Header {
				header[j] = h
			}
			if err := f.SetSheetRow(name, "A1", &header); err != nil {
				tb.Fatalf("write header: %v", err)
			}
		}
		for j, r := range s.Rows {
			row := append([]any(nil), r...)
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				tb.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				tb.Fatalf("write row %d: %v", j, err)
			}
		}
	}

	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		tb.Fatalf("save %s: %v", path, err)
	}
	return path
}
