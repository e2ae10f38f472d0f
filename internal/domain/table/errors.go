package table

import (
	"errors"
	"fmt"
)

// Sentinel kinds for table errors.
var (
	ErrSchema   = errors.New("schema error")
	ErrRowWidth = errors.New("row wider than header")
)

// SchemaError reports data that cannot be reconciled with the expected
// schema: unparseable dates, tables without join columns, out-of-domain
// categorical values. It matches ErrSchema with errors.Is.
type SchemaError struct {
	Column string
	Row    int // -1 when the error is not tied to a row
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "schema error"
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is makes every SchemaError match ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
