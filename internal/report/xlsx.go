package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

var columnWidths = []float64{10, 48, 36, 18, 20, 12, 12, 11}

// XLSXWriter writes a spreadsheet with one header row and one row per
// message.
type XLSXWriter struct {
	Labels Labels
}

func (x *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (x *XLSXWriter) Extension() string { return ".xlsx" }

func (x *XLSXWriter) Write(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := x.Labels.Header()
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range rep.Rows {
		if err := setRow(f, i+2, x.Labels.Cells(row)); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}
