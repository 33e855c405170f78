package core

// importer.go turns an uploaded spreadsheet into validated player records.
//
// The flow is all-or-nothing per file:
//  1. Read the whole file into memory
//  2. Decode the first worksheet (header row + data rows)
//  3. Resolve each canonical field through its alias list
//  4. Trim, check required fields, check the email shape
//
// The first bad row aborts the import and no records are returned.

import (
	"fmt"
	"io"
	"os"

	"github.com/cssbattle/championship/internal/sheet"
)

// Parse reads a spreadsheet from r and returns its players in sheet order.
func Parse(r io.Reader) ([]PlayerRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Kind: ErrFileRead, Err: err}
	}
	return ParseBytes(data)
}

// ParseFile reads and parses the spreadsheet at path.
func ParseFile(path string) ([]PlayerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImportError{Kind: ErrFileRead, Err: err}
	}
	return ParseBytes(data)
}

// ParseBytes parses an in-memory spreadsheet.
func ParseBytes(data []byte) ([]PlayerRecord, error) {
	if len(data) == 0 {
		return nil, &ImportError{Kind: ErrDecode, Err: fmt.Errorf("empty file")}
	}

	table, err := sheet.ReadFirstSheet(data)
	if err != nil {
		return nil, &ImportError{Kind: ErrDecode, Err: err}
	}

	records := make([]PlayerRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordFromRow resolves, normalizes and validates a single row.
func recordFromRow(row sheet.Row) (PlayerRecord, error) {
	values := make(map[Field]string, len(PlayerFieldSpecs))
	var missing []string
	for _, spec := range PlayerFieldSpecs {
		text := CellText(resolveAlias(row, spec.Aliases))
		if text == "" && spec.Required {
			missing = append(missing, string(spec.Field))
		}
		values[spec.Field] = text
	}

	if len(missing) > 0 {
		return PlayerRecord{}, &ImportError{
			Kind:   ErrMissingRequiredField,
			Row:    row.Line,
			Fields: missing,
		}
	}

	email := values[FieldEmail]
	if !IsValidEmail(email) {
		return PlayerRecord{}, &ImportError{
			Kind:  ErrInvalidEmailFormat,
			Row:   row.Line,
			Value: email,
		}
	}

	return PlayerRecord{
		FullName:    values[FieldFullName],
		Email:       email,
		GroupName:   values[FieldGroupName],
		Phone:       values[FieldPhone],
		ProfileLink: values[FieldProfileLink],
		Verified:    ParseVerified(values[FieldVerified]),
	}, nil
}
