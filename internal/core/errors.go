package core

import (
	"errors"
	"fmt"
	"strings"
)

// Import failure kinds. Every failed import wraps exactly one of these, so
// callers can branch with errors.Is. Any of them means zero records imported.
var (
	ErrFileRead             = errors.New("file read error")
	ErrDecode               = errors.New("invalid spreadsheet")
	ErrMissingRequiredField = errors.New("missing required fields")
	ErrInvalidEmailFormat   = errors.New("invalid email format")
)

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// ErrUnknownGroup is returned by a PlayerStore when a record names a group
// that does not exist and the store is not allowed to create it.
var ErrUnknownGroup = errors.New("unknown group")

// ImportError describes why a file could not be imported.
type ImportError struct {
	Kind   error    // One of the Err* sentinels above
	Row    int      // 1-based sheet row, 0 when not row-specific
	Fields []string // Missing canonical fields, for ErrMissingRequiredField
	Value  string   // Offending value, for ErrInvalidEmailFormat
	Err    error    // Underlying cause, if any
}

func (e *ImportError) Error() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	b.WriteString(e.Kind.Error())

	switch {
	case len(e.Fields) > 0:
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Fields, ", "))
	case e.Value != "":
		fmt.Fprintf(&b, ": %q", e.Value)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
