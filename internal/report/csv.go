package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVWriter writes RFC 4180 CSV with a localized header row.
type CSVWriter struct {
	Labels Labels
}

func (c *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (c *CSVWriter) Extension() string { return ".csv" }

func (c *CSVWriter) Write(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(c.Labels.Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rep.Rows {
		if err := cw.Write(c.Labels.Cells(row)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
