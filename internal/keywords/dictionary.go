// Package keywords holds the term dictionaries that drive message
// classification: weighted priority terms, pending-action phrases, deadline
// keywords and the date vocabulary of each supported locale.
//
// Dictionaries are plain data. They are built once at startup (built-in
// locales, optionally merged with a YAML overlay) and only read afterwards.
package keywords

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Dictionary is the full vocabulary used by the classifiers. Keys and terms
// may be written with any case or accents; consumers normalize them.
type Dictionary struct {
	// Locales lists the locales merged into this dictionary, e.g. ["en", "es"].
	Locales []string `yaml:"locales,omitempty"`

	// Priority maps a term to its weight relative to Normal (0).
	// Positive raises priority, negative lowers it.
	Priority map[string]int `yaml:"priority,omitempty"`

	// PriorityHeaders maps a header name to its value vocabulary.
	PriorityHeaders map[string]map[string]int `yaml:"priority_headers,omitempty"`

	PendingStrong []string `yaml:"pending_strong,omitempty"` // explicit open tasks
	PendingWeak   []string `yaml:"pending_weak,omitempty"`   // generic requests and questions
	Neutral       []string `yaml:"neutral,omitempty"`        // phrases that cancel a pending signal

	// Deadline keywords anchor nearby date expressions.
	Deadline []string `yaml:"deadline,omitempty"`

	Months          map[string]time.Month   `yaml:"months,omitempty"`
	Weekdays        map[string]time.Weekday `yaml:"weekdays,omitempty"`
	WeekdayPrefixes []string                `yaml:"weekday_prefixes,omitempty"`
	RelativeDays    map[string]int          `yaml:"relative_days,omitempty"`
	InPrefixes      []string                `yaml:"in_prefixes,omitempty"`
	DayUnits        []string                `yaml:"day_units,omitempty"`
	BusinessUnits   []string                `yaml:"business_units,omitempty"`
	WeekUnits       []string                `yaml:"week_units,omitempty"`
	NumberWords     map[string]int          `yaml:"number_words,omitempty"`
	EndOfWeek       []string                `yaml:"end_of_week,omitempty"`
	EndOfMonth      []string                `yaml:"end_of_month,omitempty"`
	EndOfYear       []string                `yaml:"end_of_year,omitempty"`

	// NotDates are phrases that contain a date word without naming a date,
	// like "esta manana" (this morning). Date expressions inside them are
	// ignored.
	NotDates []string `yaml:"not_dates,omitempty"`
}

var builtins = map[string]func() *Dictionary{
	"en": English,
	"es": Spanish,
}

// Locales returns the names of the built-in locales.
func Locales() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForLocales merges the built-in dictionaries for the given locales, in order.
func ForLocales(locales ...string) (*Dictionary, error) {
	if len(locales) == 0 {
		return Default(), nil
	}

	var dicts []*Dictionary
	for _, loc := range locales {
		build, ok := builtins[strings.ToLower(strings.TrimSpace(loc))]
		if !ok {
			return nil, fmt.Errorf("unknown locale %q (available: %s)", loc, strings.Join(Locales(), ", "))
		}
		dicts = append(dicts, build())
	}
	return Merge(append([]*Dictionary{Headers()}, dicts...)...), nil
}

// Default merges the header vocabulary and every built-in locale.
func Default() *Dictionary {
	return Merge(Headers(), English(), Spanish())
}

// Merge combines dictionaries left to right. Lists are concatenated without
// duplicates; for map entries the later dictionary wins. Map keys are
// normalized so an overlay can override a built-in term regardless of case.
func Merge(dicts ...*Dictionary) *Dictionary {
	out := &Dictionary{
		Priority:        map[string]int{},
		PriorityHeaders: map[string]map[string]int{},
		Months:          map[string]time.Month{},
		Weekdays:        map[string]time.Weekday{},
		RelativeDays:    map[string]int{},
		NumberWords:     map[string]int{},
	}

	for _, d := range dicts {
		if d == nil {
			continue
		}
		out.Locales = appendUnique(out.Locales, d.Locales...)
		for k, v := range d.Priority {
			out.Priority[Normalize(k)] = v
		}
		for header, values := range d.PriorityHeaders {
			key := strings.ToLower(header)
			if out.PriorityHeaders[key] == nil {
				out.PriorityHeaders[key] = map[string]int{}
			}
			for k, v := range values {
				out.PriorityHeaders[key][Normalize(k)] = v
			}
		}
		out.PendingStrong = appendUnique(out.PendingStrong, d.PendingStrong...)
		out.PendingWeak = appendUnique(out.PendingWeak, d.PendingWeak...)
		out.Neutral = appendUnique(out.Neutral, d.Neutral...)
		out.Deadline = appendUnique(out.Deadline, d.Deadline...)
		for k, v := range d.Months {
			out.Months[Normalize(k)] = v
		}
		for k, v := range d.Weekdays {
			out.Weekdays[Normalize(k)] = v
		}
		out.WeekdayPrefixes = appendUnique(out.WeekdayPrefixes, d.WeekdayPrefixes...)
		for k, v := range d.RelativeDays {
			out.RelativeDays[Normalize(k)] = v
		}
		out.InPrefixes = appendUnique(out.InPrefixes, d.InPrefixes...)
		out.DayUnits = appendUnique(out.DayUnits, d.DayUnits...)
		out.BusinessUnits = appendUnique(out.BusinessUnits, d.BusinessUnits...)
		out.WeekUnits = appendUnique(out.WeekUnits, d.WeekUnits...)
		for k, v := range d.NumberWords {
			out.NumberWords[Normalize(k)] = v
		}
		out.EndOfWeek = appendUnique(out.EndOfWeek, d.EndOfWeek...)
		out.EndOfMonth = appendUnique(out.EndOfMonth, d.EndOfMonth...)
		out.EndOfYear = appendUnique(out.EndOfYear, d.EndOfYear...)
		out.NotDates = appendUnique(out.NotDates, d.NotDates...)
	}

	return out
}

// Validate reports dictionary entries that can never match.
func (d *Dictionary) Validate() error {
	for term := range d.Priority {
		if Normalize(term) == "" {
			return fmt.Errorf("priority: empty term")
		}
	}
	for name, m := range d.Months {
		if m < time.January || m > time.December {
			return fmt.Errorf("months: %q maps to invalid month %d", name, m)
		}
	}
	for name, w := range d.Weekdays {
		if w < time.Sunday || w > time.Saturday {
			return fmt.Errorf("weekdays: %q maps to invalid weekday %d", name, w)
		}
	}
	for name, n := range d.NumberWords {
		if n < 0 {
			return fmt.Errorf("number_words: %q maps to negative value %d", name, n)
		}
	}
	return nil
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		dup := false
		for _, existing := range dst {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, item)
		}
	}
	return dst
}
