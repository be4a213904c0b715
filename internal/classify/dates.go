package classify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mailtriage/mailtriage/internal/keywords"
)

// dateCandidate is a span of normalized text that reads as a date.
// Spans that look like dates but name a day that does not exist are kept
// with ok=false so they still shadow the shorter spans inside them.
// Same-day words such as "today" set needsAnchor: in text they count only
// next to a deadline keyword.
type dateCandidate struct {
	date        Date
	ok          bool
	needsAnchor bool
	start       int
	end         int
}

type endKind int

const (
	endOfWeek endKind = iota
	endOfMonth
	endOfYear
)

// datePatterns recognizes date expressions in normalized text. Everything
// locale specific comes from the dictionary; the patterns are compiled once
// and are safe for concurrent use.
type datePatterns struct {
	iso      *regexp.Regexp
	numeric  *regexp.Regexp
	shortNum *regexp.Regexp
	monthDay *regexp.Regexp
	dayMonth *regexp.Regexp
	relative *regexp.Regexp
	inN      *regexp.Regexp
	weekday  *regexp.Regexp
	endOf    *regexp.Regexp
	notDate  *regexp.Regexp

	months       map[string]time.Month
	weekdays     map[string]time.Weekday
	relativeDays map[string]int
	numberWords  map[string]int
	dayUnits     map[string]bool
	bizUnits     map[string]bool
	weekUnits    map[string]bool
	ends         map[string]endKind
	dayFirst     bool
}

var (
	isoPattern      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericPattern  = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{4}|\d{2})\b`)
	shortNumPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
)

func compileDatePatterns(dict *keywords.Dictionary, dayFirst bool) *datePatterns {
	p := &datePatterns{
		iso:          isoPattern,
		numeric:      numericPattern,
		shortNum:     shortNumPattern,
		months:       dict.Months,
		weekdays:     dict.Weekdays,
		relativeDays: dict.RelativeDays,
		numberWords:  dict.NumberWords,
		dayUnits:     termSet(dict.DayUnits),
		bizUnits:     termSet(dict.BusinessUnits),
		weekUnits:    termSet(dict.WeekUnits),
		ends:         map[string]endKind{},
		dayFirst:     dayFirst,
	}

	for _, t := range dict.EndOfWeek {
		p.ends[keywords.Normalize(t)] = endOfWeek
	}
	for _, t := range dict.EndOfMonth {
		p.ends[keywords.Normalize(t)] = endOfMonth
	}
	for _, t := range dict.EndOfYear {
		p.ends[keywords.Normalize(t)] = endOfYear
	}

	months := alternation(mapKeys(dict.Months))
	if months != "" {
		p.monthDay = regexp.MustCompile(`\b(` + months + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
		p.dayMonth = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:de\s+|of\s+)?(` + months + `)\.?(?:,?\s+(?:del?\s+)?(\d{4}))?\b`)
	}

	if rel := alternation(mapKeys(dict.RelativeDays)); rel != "" {
		p.relative = regexp.MustCompile(`\b(` + rel + `)\b`)
	}

	var units []string
	units = append(units, dict.DayUnits...)
	units = append(units, dict.BusinessUnits...)
	units = append(units, dict.WeekUnits...)
	prefixes := alternation(dict.InPrefixes)
	unitAlt := alternation(units)
	if prefixes != "" && unitAlt != "" {
		count := `\d{1,3}`
		if words := alternation(mapKeys(dict.NumberWords)); words != "" {
			count += `|` + words
		}
		p.inN = regexp.MustCompile(`\b(?:` + prefixes + `)\s+(` + count + `)\s+(` + unitAlt + `)\b`)
	}

	days := alternation(mapKeys(dict.Weekdays))
	if wp := alternation(dict.WeekdayPrefixes); wp != "" && days != "" {
		p.weekday = regexp.MustCompile(`\b(?:` + wp + `)\s+(` + days + `)\b`)
	}

	if ends := alternation(mapKeys(p.ends)); ends != "" {
		p.endOf = regexp.MustCompile(`\b(` + ends + `)\b`)
	}

	if phrases := alternation(dict.NotDates); phrases != "" {
		p.notDate = regexp.MustCompile(`\b(?:` + phrases + `)\b`)
	}

	return p
}

// candidates returns every date expression in text, resolved against the
// receipt date. Spans contained in a longer span are dropped, so "8/3" is not
// reported again inside "8/3/2024".
func (p *datePatterns) candidates(text string, receipt Date, tolerance int) []dateCandidate {
	if text == "" {
		return nil
	}

	var out []dateCandidate
	add := func(loc []int, d Date, ok bool) {
		out = append(out, dateCandidate{date: d, ok: ok, start: loc[0], end: loc[1]})
	}

	for _, m := range p.iso.FindAllStringSubmatchIndex(text, -1) {
		y, mo, d := atoi(text, m, 1), atoi(text, m, 2), atoi(text, m, 3)
		date, ok := NewDate(y, time.Month(mo), d)
		add(m, date, ok)
	}

	for _, m := range p.numeric.FindAllStringSubmatchIndex(text, -1) {
		y := atoi(text, m, 3)
		if y < 100 {
			y += 2000
		}
		day, month := p.dayMonthOrder(atoi(text, m, 1), atoi(text, m, 2))
		date, ok := NewDate(y, time.Month(month), day)
		add(m, date, ok)
	}

	for _, m := range p.shortNum.FindAllStringSubmatchIndex(text, -1) {
		day, month := p.dayMonthOrder(atoi(text, m, 1), atoi(text, m, 2))
		date, ok := resolveYearless(time.Month(month), day, receipt, tolerance)
		add(m, date, ok)
	}

	if p.monthDay != nil {
		for _, m := range p.monthDay.FindAllStringSubmatchIndex(text, -1) {
			month := p.months[text[m[2]:m[3]]]
			day := atoi(text, m, 2)
			date, ok := p.monthNameDate(text, m, 3, month, day, receipt, tolerance)
			add(m, date, ok)
		}
		for _, m := range p.dayMonth.FindAllStringSubmatchIndex(text, -1) {
			month := p.months[text[m[4]:m[5]]]
			day := atoi(text, m, 1)
			date, ok := p.monthNameDate(text, m, 3, month, day, receipt, tolerance)
			add(m, date, ok)
		}
	}

	if p.relative != nil {
		for _, m := range p.relative.FindAllStringSubmatchIndex(text, -1) {
			offset := p.relativeDays[text[m[2]:m[3]]]
			add(m, receipt.AddDays(offset), true)
			out[len(out)-1].needsAnchor = offset == 0
		}
	}

	if p.inN != nil {
		for _, m := range p.inN.FindAllStringSubmatchIndex(text, -1) {
			n, ok := p.count(text[m[2]:m[3]])
			if !ok {
				continue
			}
			unit := text[m[4]:m[5]]
			switch {
			case p.bizUnits[unit]:
				add(m, addBusinessDays(receipt, n), true)
			case p.weekUnits[unit]:
				add(m, receipt.AddDays(7*n), true)
			case p.dayUnits[unit]:
				add(m, receipt.AddDays(n), true)
			}
		}
	}

	if p.weekday != nil {
		for _, m := range p.weekday.FindAllStringSubmatchIndex(text, -1) {
			target := p.weekdays[text[m[2]:m[3]]]
			ahead := (int(target) - int(receipt.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			add(m, receipt.AddDays(ahead), true)
		}
	}

	if p.endOf != nil {
		for _, m := range p.endOf.FindAllStringSubmatchIndex(text, -1) {
			switch p.ends[text[m[2]:m[3]]] {
			case endOfWeek:
				add(m, receipt.AddDays((int(time.Friday)-int(receipt.Weekday())+7)%7), true)
			case endOfMonth:
				add(m, DateOf(time.Date(receipt.Year, receipt.Month+1, 0, 0, 0, 0, 0, time.UTC)), true)
			case endOfYear:
				add(m, Date{Year: receipt.Year, Month: time.December, Day: 31}, true)
			}
		}
	}

	// Non-date phrases are added as unusable spans so that they shadow the
	// date words inside them.
	if p.notDate != nil {
		for _, m := range p.notDate.FindAllStringIndex(text, -1) {
			add(m, Date{}, false)
		}
	}

	return dropContained(out)
}

// dayMonthOrder applies the configured order to the first two numeric
// components, swapping them when only the swap gives a valid month.
func (p *datePatterns) dayMonthOrder(a, b int) (day, month int) {
	if p.dayFirst {
		day, month = a, b
	} else {
		day, month = b, a
	}
	if month > 12 && day <= 12 {
		day, month = month, day
	}
	return day, month
}

func (p *datePatterns) monthNameDate(text string, m []int, yearGroup int, month time.Month, day int, receipt Date, tolerance int) (Date, bool) {
	if m[2*yearGroup] < 0 {
		return resolveYearless(month, day, receipt, tolerance)
	}
	return NewDate(atoi(text, m, yearGroup), month, day)
}

func (p *datePatterns) count(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := p.numberWords[s]
	return n, ok
}

// resolveYearless picks the first year in which month/day exists and does
// not fall before the tolerance window.
func resolveYearless(month time.Month, day int, receipt Date, tolerance int) (Date, bool) {
	earliest := receipt.AddDays(-tolerance)
	for y := earliest.Year; y <= earliest.Year+8; y++ {
		d, ok := NewDate(y, month, day)
		if !ok {
			if month < time.January || month > time.December || day < 1 || day > 31 {
				return Date{}, false
			}
			continue
		}
		if !d.Before(earliest) {
			return d, true
		}
	}
	return Date{}, false
}

func addBusinessDays(from Date, n int) Date {
	d := from
	for n > 0 {
		d = d.AddDays(1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return d
}

func dropContained(cands []dateCandidate) []dateCandidate {
	var out []dateCandidate
	for i, c := range cands {
		shadowed := false
		for j, o := range cands {
			if i == j {
				continue
			}
			if o.start <= c.start && o.end >= c.end && (o.end-o.start > c.end-c.start || (o.end-o.start == c.end-c.start && j < i)) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// alternation builds a regexp alternation of normalized terms, longest
// first so the leftmost-first engine prefers the most specific term.
func alternation(terms []string) string {
	seen := map[string]bool{}
	var norm []string
	for _, t := range terms {
		n := keywords.Normalize(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		norm = append(norm, n)
	}
	sort.Slice(norm, func(i, j int) bool {
		if len(norm[i]) != len(norm[j]) {
			return len(norm[i]) > len(norm[j])
		}
		return norm[i] < norm[j]
	})
	for i, n := range norm {
		norm[i] = strings.ReplaceAll(regexp.QuoteMeta(n), " ", `\s+`)
	}
	return strings.Join(norm, "|")
}

func termSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[keywords.Normalize(t)] = true
	}
	return set
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func atoi(text string, m []int, group int) int {
	n, _ := strconv.Atoi(text[m[2*group]:m[2*group+1]])
	return n
}
