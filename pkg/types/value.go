// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind distinguishes an absent score from a numeric or textual one.
type ValueKind int

const (
	// KindAbsent means no submission. It is never the same as a zero score.
	KindAbsent ValueKind = iota
	KindNumber
	KindText
)

// String returns the kind name used in error details.
func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "absent"
	}
}

// Value is one score cell. The zero Value is absent.
type Value struct {
	kind ValueKind
	num  float64
	// raw is the cell text the value was parsed from, kept so an untouched
	// cell re-renders byte-identically ("85.0" stays "85.0").
	raw string
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a textual value. Empty or whitespace-only text is absent.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{kind: KindText, raw: s}
}

// ParseValue interprets a spreadsheet cell. Empty cells are absent, finite
// numbers are numeric, anything else is text.
func ParseValue(cell string) Value {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Value{kind: KindNumber, num: f, raw: cell}
	}
	return Value{kind: KindText, raw: cell}
}

// Kind reports the value kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether v holds no score.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Float returns the numeric value and whether v is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the value as cell text. Parsed values return their original
// text; constructed numbers use the shortest exact decimal form.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.raw != "" {
			return v.raw
		}
		return FormatNumber(v.num)
	case KindText:
		return v.raw
	default:
		return ""
	}
}

// Equal compares by meaning: numbers by value, text after trimming.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return strings.TrimSpace(v.raw) == strings.TrimSpace(o.raw)
	default:
		return true
	}
}

// Add sums two numeric values. Absent operands are treated as missing, so
// Absent + x is x. ok is false if either operand is text.
func (v Value) Add(o Value) (sum Value, ok bool) {
	switch {
	case v.kind == KindText || o.kind == KindText:
		return Value{}, false
	case v.kind == KindAbsent:
		return Number(o.num).withKind(o.kind), true
	case o.kind == KindAbsent:
		return Number(v.num), true
	}
	return Number(v.num + o.num), true
}

func (v Value) withKind(k ValueKind) Value {
	if k == KindAbsent {
		return Value{}
	}
	return v
}

// FormatNumber renders f without a trailing ".0" for whole numbers.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
