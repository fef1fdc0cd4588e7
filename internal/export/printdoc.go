package export

import (
	"html/template"
	"io"
	"time"

	"approval-portal/internal/application"
)

// printTemplate is a standalone document with inline styling only, so the
// print dialog renders it without any external stylesheet.
var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
h2 { margin-bottom: 4px; }
p.meta { color: #555; margin-top: 0; font-size: 12px; }
table { border-collapse: collapse; width: 100%; font-size: 12px; }
th, td { border: 1px solid #444; padding: 4px 6px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p class="meta">Generated on {{.GeneratedAt}}</p>
<table>
<thead>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type printData struct {
	Title       string
	GeneratedAt string
	Headers     []string
	Rows        [][]string
}

// WritePrintHTML renders the print view for the given snapshot. Field
// values pass through html/template's escaping, so application text can
// never inject markup into the document.
func WritePrintHTML(w io.Writer, spec application.ModuleSpec, apps []application.ApplicationResponse, generatedAt time.Time) error {
	return printTemplate.Execute(w, printData{
		Title:       spec.Label + " Applications",
		GeneratedAt: generatedAt.Format("02 Jan 2006 15:04"),
		Headers:     Headers(spec),
		Rows:        Rows(spec, apps),
	})
}
