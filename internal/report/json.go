package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mailtriage/mailtriage/internal/classify"
)

// JSONWriter writes the report with stable, unlocalized keys.
type JSONWriter struct {
	Indent bool
}

type jsonReport struct {
	ID          string        `json:"scan_id"`
	Source      string        `json:"source,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Messages    []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	UID        string            `json:"uid"`
	Subject    string            `json:"subject"`
	Sender     string            `json:"sender"`
	ReceivedAt time.Time         `json:"received_at"`
	DueDate    *classify.Date    `json:"due_date"`
	Priority   classify.Priority `json:"priority"`
	Read       bool              `json:"read"`
	Pending    bool              `json:"pending"`
}

func (j *JSONWriter) ContentType() string { return "application/json" }

func (j *JSONWriter) Extension() string { return ".json" }

func (j *JSONWriter) Write(w io.Writer, rep *Report) error {
	out := jsonReport{
		ID:          rep.ID,
		Source:      rep.Source,
		GeneratedAt: rep.GeneratedAt,
		Messages:    make([]jsonMessage, 0, len(rep.Rows)),
	}
	for _, row := range rep.Rows {
		out.Messages = append(out.Messages, jsonMessage{
			UID:        row.UID,
			Subject:    row.Subject,
			Sender:     row.Sender,
			ReceivedAt: row.Received,
			DueDate:    row.Due,
			Priority:   row.Priority,
			Read:       row.Read,
			Pending:    row.Pending,
		})
	}

	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
