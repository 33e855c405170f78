// Package core provides the business logic for player roster imports.
//
// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Organizers quote the code when an upload fails.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the configured size limit
//	FILE002 - Invalid spreadsheet: the file could not be decoded as a workbook
//	FILE003 - Read error: the upload could not be read
//	FILE004 - No file: no file was attached to the request
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing required fields: a row lacks full_name, email or group_name
//	VAL002 - Invalid email: a row has an email that is not local@domain.tld
//
// # Roster Errors (GRP001-GRP099)
//
//	GRP001 - Unknown group: a row names a group that does not exist
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: too many imports in progress
//	IMP002 - Request cancelled
//	IMP003 - Request timeout
//
// # Other
//
//	REQ001  - Malformed request body
//	PREF001 - Unknown preference key or value
//	RATE001 - Rate limited
//	ERR000  - Unknown error; check application logs for the technical error
//
// Sentinel errors are matched first with errors.Is. Anything else is
// matched case-insensitively with strings.Contains against the pattern
// table, first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the roster into smaller files",
		Code:    "FILE001",
	}
	msgInvalidSpreadsheet = UserMessage{
		Message: "File is not a valid spreadsheet",
		Action:  "Upload an .xlsx file, for example the downloadable template",
		Code:    "FILE002",
	}
	msgFileRead = UserMessage{
		Message: "The uploaded file could not be read",
		Action:  "Please try uploading the file again",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a spreadsheet to upload",
		Code:    "FILE004",
	}
	msgMissingFields = UserMessage{
		Message: "A row is missing required fields",
		Action:  "Every row needs full_name, email and group_name",
		Code:    "VAL001",
	}
	msgInvalidEmail = UserMessage{
		Message: "A row has an invalid email address",
		Action:  "Use the form name@domain.tld",
		Code:    "VAL002",
	}
	msgUnknownGroup = UserMessage{
		Message: "A row refers to a group that does not exist",
		Action:  "Create the group first or check the group_name column",
		Code:    "GRP001",
	}
	msgTooManyImports = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
)

// sentinelMessage pairs a sentinel error with its user message.
type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is consulted before the pattern table.
var sentinelMessages = []sentinelMessage{
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrDecode, msgInvalidSpreadsheet},
	{ErrFileRead, msgFileRead},
	{ErrMissingRequiredField, msgMissingFields},
	{ErrInvalidEmailFormat, msgInvalidEmail},
	{ErrTooManyImports, msgTooManyImports},
	{ErrUnknownGroup, msgUnknownGroup},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "missing required fields", msg: msgMissingFields},
	{pattern: "invalid email format", msg: msgInvalidEmail},
	{pattern: "invalid spreadsheet", msg: msgInvalidSpreadsheet},
	{pattern: "unknown group", msg: msgUnknownGroup},
	{pattern: "too many concurrent imports", msg: msgTooManyImports},

	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A player with this email already exists",
			Action:  "Remove duplicate rows and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "unknown preference",
		msg: UserMessage{
			Message: "Unknown preference",
			Action:  "Use theme (system, light, dark) or language (en, fr, ar)",
			Code:    "PREF001",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request format and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Sentinels are matched with errors.Is first, then the pattern table.
// If nothing matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// Detail returns the technical error text for errors that are safe to show
// to the uploading user: import validation failures name the row and value.
// Other errors return the empty string.
func Detail(err error) string {
	var ie *ImportError
	if errors.As(err, &ie) && (errors.Is(err, ErrMissingRequiredField) || errors.Is(err, ErrInvalidEmailFormat)) {
		return ie.Error()
	}
	return ""
}
