// Package table holds the in-memory tabular model shared by the readers,
// the aggregation step and the tier resolver.
package table

import (
	"strconv"
	"time"
)

// Kind identifies what a Value holds.
type Kind uint8

// Value kinds.
const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	kind Kind
	text string
	num  float64
	flag bool
	date time.Time
}

// Missing returns the explicit missing marker.
func Missing() Value { return Value{} }

// Text returns a string cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric cell. Integers and floats share one representation.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Date returns a temporal cell. The monotonic clock reading is stripped so
// equal instants compare equal.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t.Round(0)} }

// Kind reports the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing marker.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Text returns the raw string of a text cell and "" otherwise.
func (v Value) Text() string { return v.text }

// Number returns the float of a numeric cell and 0 otherwise.
func (v Value) Number() float64 { return v.num }

// Bool returns the flag of a boolean cell and false otherwise.
func (v Value) Bool() bool { return v.flag }

// Date returns the instant of a date cell and the zero time otherwise.
func (v Value) Date() time.Time { return v.date }

// Equal reports whether two values have the same kind and content.
// Missing values are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	case KindDate:
		return v.date.Equal(o.date)
	default:
		return true
	}
}

// Key returns a kind-tagged string usable as a map key. Values that are
// Equal produce the same key.
func (v Value) Key() string {
	switch v.kind {
	case KindText:
		return "s:" + v.text
	case KindNumber:
		n := v.num
		if n == 0 {
			n = 0 // folds -0
		}
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	case KindBool:
		return "b:" + strconv.FormatBool(v.flag)
	case KindDate:
		return "d:" + v.date.UTC().Format(time.RFC3339Nano)
	default:
		return "-"
	}
}

// String renders v for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindDate:
		return v.date.Format(time.RFC3339)
	default:
		return ""
	}
}
