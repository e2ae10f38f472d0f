package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/black-mountain1/comb-excel/internal/domain/table"
	"github.com/xuri/excelize/v2"
)

// Report layout defaults.
const (
	DefaultSheet      = "Sheet1"
	QuarantineSheet   = "quarantine"
	IndexHeader       = "index"
	reportPermissions = 0o644
)

// WriteOption configures WriteReport.
type WriteOption func(*writeSettings)

type writeSettings struct {
	sheet      string
	quarantine *table.Table
}

// WithSheetName sets the name of the report sheet.
func WithSheetName(name string) WriteOption {
	return func(s *writeSettings) {
		if name != "" {
			s.sheet = name
		}
	}
}

// WithQuarantine adds a second sheet holding rows set aside by the resolver.
// Empty or nil tables add nothing.
func WithQuarantine(t *table.Table) WriteOption {
	return func(s *writeSettings) {
		if t.Len() > 0 {
			s.quarantine = t
		}
	}
}

// WriteReport writes t to dir/name with a leading index column and returns
// the final path. The workbook is written to a temporary file in dir and
// renamed into place, so an existing report is replaced only by a complete
// one.
func WriteReport(ctx context.Context, dir, name string, t *table.Table, opts ...WriteOption) (string, error) {
	path := filepath.Join(dir, name)
	if err := ctx.Err(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	s := writeSettings{sheet: DefaultSheet}
	for _, opt := range opts {
		opt(&s)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return "", &WriteError{Path: path, Err: fmt.Errorf("%s is not a directory", dir)}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if s.sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, s.sheet); err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
	}
	if err := writeSheet(f, s.sheet, t); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if s.quarantine != nil {
		if _, err := f.NewSheet(QuarantineSheet); err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
		if err := writeSheet(f, QuarantineSheet, s.quarantine); err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
	}

	if err := commit(f, dir, path); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, t *table.Table) error {
	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, IndexHeader)
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range t.Rows {
		cells := make([]any, 0, len(r)+1)
		cells = append(cells, t.Index[i])
		for _, v := range r {
			cells = append(cells, cellValue(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v table.Value) any {
	switch v.Kind() {
	case table.KindText:
		return v.Text()
	case table.KindNumber:
		return v.Number()
	case table.KindBool:
		return v.Bool()
	case table.KindDate:
		return v.Date()
	default:
		return nil
	}
}

// commit saves f next to path and renames it over path.
func commit(f *excelize.File, dir, path string) (err error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tmp, err := os.CreateTemp(dir, "."+base+"-*.xlsx")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), reportPermissions); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
