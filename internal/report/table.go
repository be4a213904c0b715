package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableWriter renders an aligned text table for terminals.
type TableWriter struct {
	Labels Labels
}

func (t *TableWriter) ContentType() string { return "text/plain; charset=utf-8" }

func (t *TableWriter) Extension() string { return ".txt" }

func (t *TableWriter) Write(w io.Writer, rep *Report) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Labels.Header())
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, row := range rep.Rows {
		cells := t.Labels.Cells(row)
		cells[1] = truncate(cells[1], 60)
		cells[2] = truncate(cells[2], 40)
		table.Append(cells)
	}
	table.Render()

	s := rep.Summarize()
	_, err := fmt.Fprintf(w, "%d messages, %d unread, %d pending, %d with due date\n",
		s.Total, s.Unread, s.Pending, s.WithDue)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
