package keywords

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Match is one occurrence of a term inside normalized text.
type Match struct {
	Term  string
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
}

// Matcher finds whole-word occurrences of a fixed set of terms.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	terms []string
}

// NewMatcher normalizes and deduplicates terms. Longer terms are tried first
// so "day after tomorrow" wins over "tomorrow" at the same position.
func NewMatcher(terms []string) *Matcher {
	seen := make(map[string]bool, len(terms))
	var normalized []string
	for _, t := range terms {
		n := Normalize(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		if len(normalized[i]) != len(normalized[j]) {
			return len(normalized[i]) > len(normalized[j])
		}
		return normalized[i] < normalized[j]
	})

	return &Matcher{terms: normalized}
}

// Terms returns the normalized terms, longest first.
func (m *Matcher) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Len returns the number of distinct terms.
func (m *Matcher) Len() int {
	return len(m.terms)
}

// Contains reports whether any term occurs in text on word boundaries.
// text must already be normalized.
func (m *Matcher) Contains(text string) bool {
	for _, term := range m.terms {
		if indexWord(text, term, 0) >= 0 {
			return true
		}
	}
	return false
}

// FindAll returns every non-overlapping whole-word match in text, ordered by
// position. When two terms overlap, the longer one is kept.
func (m *Matcher) FindAll(text string) []Match {
	var all []Match
	for _, term := range m.terms {
		for from := 0; from < len(text); {
			i := indexWord(text, term, from)
			if i < 0 {
				break
			}
			all = append(all, Match{Term: term, Start: i, End: i + len(term)})
			from = i + len(term)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End > all[j].End
	})

	var out []Match
	lastEnd := -1
	for _, match := range all {
		if match.Start < lastEnd {
			continue
		}
		out = append(out, match)
		lastEnd = match.End
	}
	return out
}

// Strip replaces every match with spaces, keeping byte offsets stable.
func (m *Matcher) Strip(text string) string {
	matches := m.FindAll(text)
	if len(matches) == 0 {
		return text
	}

	b := []byte(text)
	for _, match := range matches {
		for i := match.Start; i < match.End; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// indexWord finds term in text at or after from, accepting only occurrences
// that are not glued to a letter or digit on either side.
func indexWord(text, term string, from int) int {
	if term == "" {
		return -1
	}
	for from <= len(text)-len(term) {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return start
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return -1
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}
