package report

import (
	"fmt"
	"time"

	"github.com/mailtriage/mailtriage/internal/classify"
)

const (
	receivedLayout = "2006-01-02 15:04"
	dueLayout      = "2006-01-02"
)

// Labels holds the column titles and value names of one report locale.
type Labels struct {
	UID      string
	Subject  string
	Sender   string
	Received string
	Due      string
	Priority string
	Status   string
	Pending  string

	Read, Unread  string
	Yes, No       string
	NoSubject     string
	UnknownSender string

	Priorities map[classify.Priority]string
}

var locales = map[string]Labels{
	"en": {
		UID: "UID", Subject: "Subject", Sender: "Sender", Received: "Received",
		Due: "Due date", Priority: "Priority", Status: "Status", Pending: "Pending",
		Read: "Read", Unread: "Unread", Yes: "yes", No: "no",
		NoSubject: "(no subject)", UnknownSender: "(unknown)",
		Priorities: map[classify.Priority]string{
			classify.Low: "Low", classify.Normal: "Normal", classify.High: "High", classify.Urgent: "Urgent",
		},
	},
	"es": {
		UID: "UID", Subject: "Asunto", Sender: "Remitente", Received: "Fecha de recepción",
		Due: "Fecha de vencimiento", Priority: "Prioridad", Status: "Estado", Pending: "Pendiente",
		Read: "Leído", Unread: "No leído", Yes: "Sí", No: "No",
		NoSubject: "(Sin asunto)", UnknownSender: "Desconocido",
		Priorities: map[classify.Priority]string{
			classify.Low: "Baja", classify.Normal: "Normal", classify.High: "Alta", classify.Urgent: "Urgente",
		},
	},
}

// LabelsFor returns the labels of locale.
func LabelsFor(locale string) (Labels, error) {
	l, ok := locales[locale]
	if !ok {
		return Labels{}, fmt.Errorf("unknown report locale %q", locale)
	}
	return l, nil
}

// Header returns the column titles in report order.
func (l Labels) Header() []string {
	return []string{l.UID, l.Subject, l.Sender, l.Received, l.Due, l.Priority, l.Status, l.Pending}
}

// Cells renders row as display strings in report order.
func (l Labels) Cells(row Row) []string {
	subject := row.Subject
	if subject == "" {
		subject = l.NoSubject
	}
	sender := row.Sender
	if sender == "" {
		sender = l.UnknownSender
	}
	return []string{
		row.UID,
		subject,
		sender,
		formatTime(row.Received),
		formatDue(row.Due),
		l.priority(row.Priority),
		l.status(row.Read),
		l.yesNo(row.Pending),
	}
}

func (l Labels) priority(p classify.Priority) string {
	if name, ok := l.Priorities[p]; ok {
		return name
	}
	return p.String()
}

func (l Labels) status(read bool) string {
	if read {
		return l.Read
	}
	return l.Unread
}

func (l Labels) yesNo(v bool) string {
	if v {
		return l.Yes
	}
	return l.No
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(receivedLayout)
}

func formatDue(d *classify.Date) string {
	if d == nil {
		return ""
	}
	return d.Time(time.UTC).Format(dueLayout)
}
