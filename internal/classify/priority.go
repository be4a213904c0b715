package classify

import (
	"regexp"

	"github.com/mailtriage/mailtriage/internal/keywords"
)

// headerToken pulls the leading word of a header value, so "1 (Highest)"
// yields "1" and "High; comment" yields "high".
var headerToken = regexp.MustCompile(`^[a-z0-9-]+`)

// PriorityClassifier scores a message from its priority headers and the
// weighted priority terms in subject and body.
type PriorityClassifier struct {
	headers    map[string]map[string]int
	weights    map[string]int
	terms      *keywords.Matcher
	neutral    *keywords.Matcher
	thresholds Thresholds
}

// NewPriorityClassifier builds a classifier from dict.
func NewPriorityClassifier(dict *keywords.Dictionary, t Thresholds) *PriorityClassifier {
	weights := make(map[string]int, len(dict.Priority))
	terms := make([]string, 0, len(dict.Priority))
	for term, w := range dict.Priority {
		n := keywords.Normalize(term)
		weights[n] = w
		terms = append(terms, n)
	}
	// Neutral phrases that are weighted terms themselves, like "fyi", keep
	// their weight.
	var neutral []string
	for _, phrase := range dict.Neutral {
		if _, weighted := weights[keywords.Normalize(phrase)]; !weighted {
			neutral = append(neutral, phrase)
		}
	}
	return &PriorityClassifier{
		headers:    dict.PriorityHeaders,
		weights:    weights,
		terms:      keywords.NewMatcher(terms),
		neutral:    keywords.NewMatcher(neutral),
		thresholds: t,
	}
}

// Evaluate returns the priority of msg. Without any signal it is Normal.
func (c *PriorityClassifier) Evaluate(msg *RawMessage) Priority {
	return c.thresholds.Level(c.Score(msg))
}

// Score returns the signed score relative to the Normal baseline. Header and
// keyword signals are each the strongest of their kind; when both are present
// the higher one wins.
func (c *PriorityClassifier) Score(msg *RawMessage) int {
	header, hasHeader := c.headerSignal(msg.Headers)
	keyword, hasKeyword := c.keywordSignal(msg.Subject, msg.Body)

	switch {
	case hasHeader && hasKeyword:
		return max(header, keyword)
	case hasHeader:
		return header
	case hasKeyword:
		return keyword
	default:
		return 0
	}
}

func (c *PriorityClassifier) headerSignal(h Header) (int, bool) {
	best, found := 0, false
	for name, vocab := range c.headers {
		for _, raw := range h.Values(name) {
			w, ok := lookupHeaderValue(vocab, raw)
			if !ok {
				continue
			}
			if !found || w > best {
				best, found = w, true
			}
		}
	}
	return best, found
}

func lookupHeaderValue(vocab map[string]int, raw string) (int, bool) {
	v := keywords.Normalize(raw)
	if w, ok := vocab[v]; ok {
		return w, true
	}
	tok := headerToken.FindString(v)
	if tok == "" {
		return 0, false
	}
	w, ok := vocab[tok]
	return w, ok
}

// keywordSignal ignores terms inside neutral phrases, so "no action
// required" does not count as "action required".
func (c *PriorityClassifier) keywordSignal(subject, body string) (int, bool) {
	best, found := 0, false
	for _, text := range []string{subject, ownText(body)} {
		for _, m := range c.terms.FindAll(c.neutral.Strip(keywords.Normalize(text))) {
			w := c.weights[m.Term]
			if !found || w > best {
				best, found = w, true
			}
		}
	}
	return best, found
}

// Matched returns the priority terms found in subject and body, for
// diagnostics.
func (c *PriorityClassifier) Matched(msg *RawMessage) []string {
	var out []string
	for _, text := range []string{msg.Subject, ownText(msg.Body)} {
		for _, m := range c.terms.FindAll(c.neutral.Strip(keywords.Normalize(text))) {
			out = append(out, m.Term)
		}
	}
	return out
}
