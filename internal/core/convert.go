package core

// convert.go normalizes decoded cell values into the text the validator sees.
//
// Every value is turned into trimmed text before any check runs, so
// validation never needs to know whether a cell was typed as a number,
// a boolean or a string in the workbook.

import (
	"regexp"
	"strings"

	"github.com/cssbattle/championship/internal/sheet"
)

// emailRegex is a shape check only: local@domain.tld with no whitespace.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CellText converts a decoded cell to trimmed text.
// Absent cells become the empty string.
func CellText(v sheet.Value) string {
	if !v.Present() {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// IsValidEmail reports whether s has the shape local@domain.tld.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ParseVerified returns true only for the text "true", ignoring case and
// surrounding whitespace. Anything else, including "yes" and "1", is false.
func ParseVerified(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == "true"
}
