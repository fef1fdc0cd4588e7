package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"approval-portal/internal/application"
)

// XLSXFileName is the download name for a module's spreadsheet export.
func XLSXFileName(spec application.ModuleSpec) string {
	return spec.Code + "_applications.xlsx"
}

// WriteXLSX renders the snapshot as a single-sheet workbook with a frozen
// header row.
func WriteXLSX(w io.Writer, spec application.ModuleSpec, apps []application.ApplicationResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	writeRow := func(rowIdx int, values []string) error {
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, Headers(spec)); err != nil {
		return err
	}
	for i, row := range Rows(spec, apps) {
		if err := writeRow(i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}
