// Package xlsx reads spreadsheet workbooks into tables and writes the
// summary report workbook.
package xlsx

import (
	"errors"
	"fmt"
)

// Sentinel kinds for spreadsheet errors.
var (
	ErrRead    = errors.New("read spreadsheet failed")
	ErrWrite   = errors.New("write spreadsheet failed")
	ErrNoSheet = errors.New("workbook has no sheets")
)

// ReadError reports a source workbook that cannot be opened or parsed.
// It matches ErrRead with errors.Is.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// Is makes every ReadError match ErrRead.
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// WriteError reports an output workbook that cannot be written.
// It matches ErrWrite with errors.Is.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// Is makes every WriteError match ErrWrite.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }
