package classify

import (
	"strings"

	"github.com/mailtriage/mailtriage/internal/keywords"
)

// PendingDetector flags messages that imply an open task or an unanswered
// request. Unread messages are flagged on any signal; read messages only on
// a strong one.
type PendingDetector struct {
	strong        *keywords.Matcher
	weak          *keywords.Matcher
	neutral       *keywords.Matcher
	questionMarks bool
}

// NewPendingDetector builds a detector from dict.
func NewPendingDetector(dict *keywords.Dictionary, questionMarks bool) *PendingDetector {
	return &PendingDetector{
		strong:        keywords.NewMatcher(dict.PendingStrong),
		weak:          keywords.NewMatcher(dict.PendingWeak),
		neutral:       keywords.NewMatcher(dict.Neutral),
		questionMarks: questionMarks,
	}
}

// Evaluate reports whether msg is pending.
func (d *PendingDetector) Evaluate(msg *RawMessage) bool {
	strong, weak := d.Signals(msg.Subject, msg.Body)
	if strong {
		return true
	}
	return weak && !msg.IsRead
}

// Signals reports the strong and weak pending signals in subject and body
// after neutral phrases such as "no action required" and quoted replies are
// removed.
func (d *PendingDetector) Signals(subject, body string) (strong, weak bool) {
	for _, raw := range []string{subject, ownText(body)} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		text := d.neutral.Strip(keywords.Normalize(raw))
		if d.strong.Contains(text) {
			strong = true
		}
		if d.weak.Contains(text) || (d.questionMarks && strings.ContainsAny(text, "?¿")) {
			weak = true
		}
	}
	return strong, weak
}
