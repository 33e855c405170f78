package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/cssbattle/championship/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestErrorAlert_EscapesContent(t *testing.T) {
	out := render(t, ErrorAlert("Bad <file>", "Try again", "VAL002", `row 3: invalid email format: "<x>"`))

	if strings.Contains(out, "<file>") || strings.Contains(out, `"<x>"`) {
		t.Errorf("output is not escaped: %s", out)
	}
	for _, want := range []string{"Bad &lt;file&gt;", "Try again", "Code: VAL002", "row 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestImportResult(t *testing.T) {
	out := render(t, ImportResult(&core.ImportResult{
		ImportID:      "abc",
		FileName:      "dd101.xlsx",
		Total:         5,
		Inserted:      3,
		Updated:       2,
		GroupsCreated: 1,
	}))

	for _, want := range []string{"Imported 5 players from dd101.xlsx", "3 new", "2 updated", "1 groups created", "Import abc"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestImportResult_MergedRows(t *testing.T) {
	out := render(t, ImportResult(&core.ImportResult{Rows: 3, Total: 2, Inserted: 2}))
	if !strings.Contains(out, "Imported 2 players") || !strings.Contains(out, "1 repeated emails merged") {
		t.Errorf("unexpected output: %s", out)
	}

	out = render(t, ImportResult(&core.ImportResult{Rows: 2, Total: 2, Inserted: 2}))
	if strings.Contains(out, "merged") {
		t.Errorf("no rows were merged: %s", out)
	}
}

func TestErrorAlert_OmitsEmptyParts(t *testing.T) {
	out := render(t, ErrorAlert("Too many requests", "", "RATE001", ""))
	if strings.Contains(out, `class="detail"`) || strings.Contains(out, "<p>") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestPreview_ListsRecords(t *testing.T) {
	out := render(t, Preview("roster.xlsx", core.TemplateExamples))

	if !strings.Contains(out, "contains 2 valid players") {
		t.Errorf("missing count: %s", out)
	}
	if !strings.Contains(out, "john.doe@example.com") || !strings.Contains(out, "Jane Smith") {
		t.Errorf("missing rows: %s", out)
	}
}

func TestPlayerTable_UnsafeProfileLink(t *testing.T) {
	out := render(t, PlayerTable([]core.Player{{
		PlayerRecord: core.PlayerRecord{FullName: "X", ProfileLink: "javascript:alert(1)"},
	}}))
	if strings.Contains(out, "javascript:") {
		t.Errorf("unsafe URL rendered: %s", out)
	}
}

func TestPlayerTable_Empty(t *testing.T) {
	out := render(t, PlayerTable(nil))
	if !strings.Contains(out, "No players imported yet") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestGroupList(t *testing.T) {
	out := render(t, GroupList([]string{"DD101", "<DD102>"}))
	for _, want := range []string{"<li>DD101</li>", "<li>&lt;DD102&gt;</li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	if out := render(t, GroupList(nil)); !strings.Contains(out, "No groups yet") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestPage(t *testing.T) {
	out := render(t, Page(PageParams{
		MaxFileSize: 5 * 1024 * 1024,
		Theme:       "dark",
		Language:    "fr",
		Groups:      []string{"DD101"},
	}))

	for _, want := range []string{`lang="fr"`, `data-theme="dark"`, "/api/players/template", `hx-post="/api/players/import"`, "5 MB", "<li>DD101</li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPage_Defaults(t *testing.T) {
	out := render(t, Page(PageParams{}))
	if !strings.Contains(out, `lang="en"`) || !strings.Contains(out, `data-theme="system"`) {
		t.Errorf("defaults not applied: %s", out)
	}
}
