package classify

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/mailtriage/mailtriage/internal/keywords"
)

// DueDateExtractor finds at most one due date per message. Deadline headers
// take precedence over anything inferred from the text.
type DueDateExtractor struct {
	headers   []string
	patterns  *datePatterns
	deadline  *keywords.Matcher
	tolerance int
	horizon   int
	window    int
}

// NewDueDateExtractor compiles the date vocabulary of dict.
func NewDueDateExtractor(dict *keywords.Dictionary, opts Options) *DueDateExtractor {
	return &DueDateExtractor{
		headers:   opts.DueDateHeaders,
		patterns:  compileDatePatterns(dict, opts.DayFirst),
		deadline:  keywords.NewMatcher(dict.Deadline),
		tolerance: opts.Tolerance,
		horizon:   opts.MaxHorizon,
		window:    opts.DeadlineWindow,
	}
}

// Evaluate returns the due date of msg, or nil.
func (e *DueDateExtractor) Evaluate(msg *RawMessage) *Date {
	receipt := DateOf(msg.ReceivedAt)

	if d := e.fromHeaders(msg.Headers, receipt); d != nil {
		return d
	}
	if d := e.fromText(ownText(msg.Body), receipt); d != nil {
		return d
	}
	return e.fromText(msg.Subject, receipt)
}

func (e *DueDateExtractor) fromHeaders(h Header, receipt Date) *Date {
	if len(h) == 0 {
		return nil
	}
	for _, name := range e.headers {
		for _, value := range h.Values(name) {
			if d, ok := e.parseHeaderValue(value, receipt); ok && e.valid(d, receipt) {
				return &d
			}
		}
	}
	return nil
}

// parseHeaderValue accepts an RFC 5322 date, falling back to the calendar
// forms recognized in text.
func (e *DueDateExtractor) parseHeaderValue(value string, receipt Date) (Date, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, false
	}
	if t, err := mail.ParseDate(value); err == nil {
		return DateOf(t), true
	}
	for _, c := range e.patterns.candidates(keywords.Normalize(value), receipt, e.tolerance) {
		if c.ok && e.valid(c.date, receipt) {
			return c.date, true
		}
	}
	return Date{}, false
}

type rankedCandidate struct {
	dateCandidate
	anchored bool
	distance int
}

func (e *DueDateExtractor) fromText(raw string, receipt Date) *Date {
	text := keywords.Normalize(raw)
	if text == "" {
		return nil
	}

	cands := e.patterns.candidates(text, receipt, e.tolerance)
	if len(cands) == 0 {
		return nil
	}
	kws := e.deadline.FindAll(text)

	var best *rankedCandidate
	for _, c := range cands {
		if !c.ok || !e.valid(c.date, receipt) {
			continue
		}
		r := rankedCandidate{dateCandidate: c}
		r.distance, r.anchored = e.anchor(text, kws, c)
		if c.needsAnchor && !r.anchored {
			continue
		}
		if best == nil || r.beats(best) {
			best = &r
		}
	}
	if best == nil {
		return nil
	}
	d := best.date
	return &d
}

// anchor reports the smallest word distance from a preceding deadline
// keyword to c. Keywords that overlap the candidate, as "by" does in
// "by friday", have distance zero. Sentence punctuation breaks the anchor.
func (e *DueDateExtractor) anchor(text string, kws []keywords.Match, c dateCandidate) (int, bool) {
	best, found := 0, false
	for _, kw := range kws {
		if kw.Start > c.start {
			break
		}
		dist := 0
		if kw.End <= c.start {
			between := text[kw.End:c.start]
			if strings.ContainsAny(between, ".!?;") {
				continue
			}
			dist = countWords(between)
		}
		if dist > e.window {
			continue
		}
		if !found || dist < best {
			best, found = dist, true
		}
	}
	return best, found
}

func (r *rankedCandidate) beats(other *rankedCandidate) bool {
	if r.anchored != other.anchored {
		return r.anchored
	}
	if r.anchored && r.distance != other.distance {
		return r.distance < other.distance
	}
	if r.date != other.date {
		return r.date.Before(other.date)
	}
	return r.start < other.start
}

func (e *DueDateExtractor) valid(d Date, receipt Date) bool {
	return !d.Before(receipt.AddDays(-e.tolerance)) && !d.After(receipt.AddDays(e.horizon))
}

func countWords(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}
