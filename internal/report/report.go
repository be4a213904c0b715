// Package report turns classification results into rows and writes them in
// several formats.
package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/mailtriage/mailtriage/internal/classify"
)

// Row is one message in the report.
type Row struct {
	UID      string
	Subject  string
	Sender   string
	Received time.Time
	Due      *classify.Date
	Priority classify.Priority
	Read     bool
	Pending  bool
}

// Report is the output of one scan.
type Report struct {
	ID          string
	Source      string // folder or file set the rows came from
	GeneratedAt time.Time
	Rows        []Row
}

// Build joins messages with their results by UID. A message without a
// result gets the default classification.
func Build(msgs []classify.RawMessage, results []classify.Result) []Row {
	byUID := make(map[string][]classify.Result, len(results))
	for _, r := range results {
		byUID[r.UID] = append(byUID[r.UID], r)
	}

	rows := make([]Row, 0, len(msgs))
	for _, m := range msgs {
		res := classify.Result{UID: m.UID, Priority: classify.Normal}
		if queue := byUID[m.UID]; len(queue) > 0 {
			res = queue[0]
			byUID[m.UID] = queue[1:]
		}
		rows = append(rows, Row{
			UID:      m.UID,
			Subject:  m.Subject,
			Sender:   m.Sender,
			Received: m.ReceivedAt,
			Due:      res.DueDate,
			Priority: res.Priority,
			Read:     m.IsRead,
			Pending:  res.IsPending,
		})
	}
	return rows
}

// Sort orders rows unread first, then newest receipt first, then by UID.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Read != b.Read {
			return !a.Read
		}
		if !a.Received.Equal(b.Received) {
			return a.Received.After(b.Received)
		}
		return uidLess(a.UID, b.UID)
	})
}

// uidLess compares numerically when both UIDs are numbers.
func uidLess(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// Summary counts rows per category.
type Summary struct {
	Total      int
	Unread     int
	Pending    int
	WithDue    int
	ByPriority map[classify.Priority]int
}

// Summarize counts the rows of r.
func (r *Report) Summarize() Summary {
	s := Summary{Total: len(r.Rows), ByPriority: map[classify.Priority]int{}}
	for _, row := range r.Rows {
		if !row.Read {
			s.Unread++
		}
		if row.Pending {
			s.Pending++
		}
		if row.Due != nil {
			s.WithDue++
		}
		s.ByPriority[row.Priority]++
	}
	return s
}
