// Package classify turns raw mailbox messages into classification results:
// a priority level, an optional due date and a pending-action flag.
//
// Classification is a pure function of the message and the keyword
// dictionary. It never fails and never consults the wall clock; relative
// dates are resolved against the message receipt time.
package classify

import (
	"fmt"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

// Header is a case-insensitive multi-value header map. Add stores keys in
// canonical MIME form; lookups also find keys written in any other case,
// so literal maps such as Header{"reply-by": ...} work too.
type Header map[string][]string

// Add appends a value to the header key.
func (h Header) Add(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	h[key] = append(h[key], value)
}

// Get returns the first value for key, or "".
func (h Header) Get(key string) string {
	if v := h.Values(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns every value for key. Values stored under keys that differ
// only in case follow the canonical key's values, in key order.
func (h Header) Values(key string) []string {
	canonical := textproto.CanonicalMIMEHeaderKey(key)
	var others []string
	for k := range h {
		if k != canonical && strings.EqualFold(k, canonical) {
			others = append(others, k)
		}
	}
	if len(others) == 0 {
		return h[canonical]
	}
	sort.Strings(others)
	values := append([]string(nil), h[canonical]...)
	for _, k := range others {
		values = append(values, h[k]...)
	}
	return values
}

// RawMessage is one message as read from the mailbox.
type RawMessage struct {
	UID        string
	Subject    string
	Sender     string
	Headers    Header
	Body       string // plain text, or text extracted from HTML
	ReceivedAt time.Time
	IsRead     bool
}

// Priority is an ordered urgency level.
type Priority int

const (
	Low Priority = iota
	Normal
	High
	Urgent
)

var priorityNames = [...]string{"low", "normal", "high", "urgent"}

func (p Priority) String() string {
	if p < Low || p > Urgent {
		return fmt.Sprintf("priority(%d)", int(p))
	}
	return priorityNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority parses a priority name such as "high".
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range priorityNames {
		if name == s {
			return Priority(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown priority %q", s)
}

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a Date and reports whether the combination exists,
// e.g. 31 February does not.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler using ISO 8601.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse("2006-01-02", string(text))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", text, err)
	}
	*d = DateOf(t)
	return nil
}

// Result is the classification of one message.
type Result struct {
	UID       string   `json:"uid"`
	Priority  Priority `json:"priority"`
	DueDate   *Date    `json:"due_date,omitempty"`
	IsPending bool     `json:"is_pending"`
}
