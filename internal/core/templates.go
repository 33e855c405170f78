package core

import (
	"io"

	"github.com/cssbattle/championship/internal/sheet"
)

// TemplateSheetName is the worksheet name used in the roster template.
const TemplateSheetName = "Players"

// templateFilename is the suggested download name for the template.
const templateFilename = "players_template.xlsx"

// TemplateHeaders are the column headers written to the roster template.
// profile_link and verified use their spreadsheet-facing names; both are
// matched back through the alias lists on import.
var TemplateHeaders = []string{
	"full_name",
	"email",
	"group_name",
	"phone",
	"cssbattle_profile_link",
	"verified_ofppt",
}

// TemplateExamples are the sample rows shipped in the template.
var TemplateExamples = []PlayerRecord{
	{
		FullName:    "John Doe",
		Email:       "john.doe@example.com",
		GroupName:   "DD101",
		Phone:       "+212600000001",
		ProfileLink: "https://cssbattle.dev/player/johndoe",
		Verified:    true,
	},
	{
		FullName:    "Jane Smith",
		Email:       "jane.smith@example.com",
		GroupName:   "DD102",
		Phone:       "+212600000002",
		ProfileLink: "https://cssbattle.dev/player/janesmith",
		Verified:    false,
	},
}

var templateColumnWidths = []float64{24, 30, 14, 18, 42, 16}

// TemplateFilename returns the suggested file name for the roster template.
func TemplateFilename() string {
	return templateFilename
}

// WriteTemplate writes the roster template workbook to w.
// The output content is the same on every call.
func WriteTemplate(w io.Writer) error {
	return sheet.Write(w, templateWorkbook())
}

// GenerateTemplate returns the roster template workbook.
func GenerateTemplate() ([]byte, error) {
	return sheet.Bytes(templateWorkbook())
}

func templateWorkbook() sheet.Workbook {
	rows := make([][]any, len(TemplateExamples))
	for i, p := range TemplateExamples {
		rows[i] = []any{p.FullName, p.Email, p.GroupName, p.Phone, p.ProfileLink, p.Verified}
	}
	return sheet.Workbook{
		Sheet:        TemplateSheetName,
		Headers:      TemplateHeaders,
		Rows:         rows,
		ColumnWidths: templateColumnWidths,
		Creator:      "CSS Battle Championship",
	}
}
