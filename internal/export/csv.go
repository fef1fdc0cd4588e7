package export

import (
	"encoding/csv"
	"io"

	"approval-portal/internal/application"
)

// CSVFileName is the download name for a module's CSV export.
func CSVFileName(spec application.ModuleSpec) string {
	return spec.Code + "_applications.csv"
}

// WriteCSV renders a header row plus one row per application. Cells
// containing a comma, quote, or newline are quoted with internal quotes
// doubled, so a standard CSV parser round-trips every field exactly.
func WriteCSV(w io.Writer, spec application.ModuleSpec, apps []application.ApplicationResponse) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Headers(spec)); err != nil {
		return err
	}
	for _, row := range Rows(spec, apps) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
