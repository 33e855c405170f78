// Package sheet reads and writes single-sheet xlsx workbooks.
//
// Reading turns the first worksheet into a header row plus typed data rows.
// Cell values cross the package boundary as [Value], a small variant of
// text, number and boolean, so callers normalize to text once and never
// branch on spreadsheet cell types again.
package sheet

import "strings"

// Kind identifies the type a cell held in the workbook.
type Kind int

const (
	KindAbsent Kind = iota
	KindText
	KindNumber
	KindBool
)

// Value is a decoded cell. Text holds the raw cell text; for KindBool it is
// always "true" or "false".
type Value struct {
	Kind Kind
	Text string
}

// Text builds a text value, or an absent one for the empty string.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindText, Text: s}
}

// Bool builds a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Text: "true"}
	}
	return Value{Kind: KindBool, Text: "false"}
}

// Number builds a numeric value from its textual form.
func Number(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindNumber, Text: s}
}

// Present reports whether the cell had any content.
func (v Value) Present() bool {
	return v.Kind != KindAbsent
}

// Truthy reports whether the cell carries a usable value. Empty text,
// numeric zero and boolean false are not truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindText:
		return v.Text != ""
	case KindNumber:
		return !isZero(v.Text)
	case KindBool:
		return v.Text == "true"
	default:
		return false
	}
}

// String returns the cell as text.
func (v Value) String() string {
	return v.Text
}

func isZero(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	s = strings.TrimLeft(s, "+-")
	for _, r := range s {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}
