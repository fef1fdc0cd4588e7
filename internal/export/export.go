// Package export serializes an already-filtered, already-sorted list of
// applications into downloadable artifacts. Formatters are pure: they
// touch neither network nor database, and render exactly the slice they
// are handed.
package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"approval-portal/internal/application"
)

var titleCaser = cases.Title(language.English)

var baseColumns = []string{
	"applnNo", "empId", "name", "directorate", "division",
	"reason", "startDate", "endDate", "contact", "fileName", "status",
}

var headerOverrides = map[string]string{
	"applnNo":  "Appln No",
	"empId":    "Emp ID",
	"fileName": "Files",
	"taAmount": "TA Amount",
}

// Columns returns the module's export column keys: the common set followed
// by the module-specific extras in their declared order.
func Columns(spec application.ModuleSpec) []string {
	cols := make([]string, 0, len(baseColumns)+len(spec.ExtraColumns))
	cols = append(cols, baseColumns...)
	cols = append(cols, spec.ExtraColumns...)
	return cols
}

// Headers returns the human-readable header row for the module.
func Headers(spec application.ModuleSpec) []string {
	cols := Columns(spec)
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, headerFor(c))
	}
	return out
}

// Row flattens one application into cell values aligned with Columns.
func Row(spec application.ModuleSpec, app application.ApplicationResponse) []string {
	row := []string{
		app.ApplnNo, app.EmpID, app.Name, app.Directorate, app.Division,
		app.Reason, app.StartDate, app.EndDate, app.Contact, app.FileName, app.Status,
	}
	for _, c := range spec.ExtraColumns {
		row = append(row, app.Extras[c])
	}
	return row
}

// Rows flattens the list in order.
func Rows(spec application.ModuleSpec, apps []application.ApplicationResponse) [][]string {
	out := make([][]string, 0, len(apps))
	for _, app := range apps {
		out = append(out, Row(spec, app))
	}
	return out
}

func headerFor(key string) string {
	if h, ok := headerOverrides[key]; ok {
		return h
	}
	return titleCaser.String(splitCamel(key))
}

// splitCamel turns "billDate" into "bill Date" so the title caser can
// produce "Bill Date".
func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
