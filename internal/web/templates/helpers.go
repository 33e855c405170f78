// Package templates renders the roster UI as templ components.
//
// Components live in the .templ files; run `templ generate` after editing
// them to refresh the _templ.go files.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/cssbattle/championship/internal/core"
)

func pageLanguage(p PageParams) string {
	if p.Language == "" {
		return "en"
	}
	return p.Language
}

func pageTheme(p PageParams) string {
	if p.Theme == "" {
		return "system"
	}
	return p.Theme
}

// mergedRows is the number of rows folded into an earlier row with the
// same email.
func mergedRows(r *core.ImportResult) int {
	return r.Rows - r.Total
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return strconv.FormatFloat(float64(n)/mb, 'f', -1, 64) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

// profileLink renders a player's profile link. Links come from uploaded
// spreadsheets, so templ.URL replaces anything that is not http(s),
// mailto or relative.
func profileLink(link string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		href := templ.EscapeString(string(templ.URL(link)))
		_, err := io.WriteString(w, `<a href="`+href+`" rel="noopener" target="_blank">profile</a>`)
		return err
	})
}
