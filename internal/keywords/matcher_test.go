package keywords

import (
	"reflect"
	"strings"
	"testing"
)

func TestMatcherContains(t *testing.T) {
	m := NewMatcher([]string{"urgent", "ASAP", "Acción requerida"})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "exact word", text: "this is urgent", want: true},
		{name: "not inside longer word", text: "esto es urgente", want: false},
		{name: "not inside prefix", text: "nonurgent stuff", want: false},
		{name: "punctuation boundary", text: "reply asap!", want: true},
		{name: "folded term", text: "accion requerida hoy", want: true},
		{name: "no match", text: "hello world", want: false},
		{name: "empty", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Contains(tt.text); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatcherFindAllPrefersLongest(t *testing.T) {
	m := NewMatcher([]string{"priority", "low priority", "tomorrow", "day after tomorrow"})

	got := m.FindAll("low priority, due the day after tomorrow")
	want := []Match{
		{Term: "low priority", Start: 0, End: 12},
		{Term: "day after tomorrow", Start: 22, End: 40},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindAll() = %+v, want %+v", got, want)
	}
}

func TestMatcherFindAllRepeated(t *testing.T) {
	m := NewMatcher([]string{"please"})

	got := m.FindAll("please, please me")
	if len(got) != 2 {
		t.Fatalf("FindAll() returned %d matches, want 2", len(got))
	}
	if got[1].Start != 8 {
		t.Errorf("second match starts at %d, want 8", got[1].Start)
	}
}

func TestMatcherStrip(t *testing.T) {
	m := NewMatcher([]string{"no action required"})

	text := "fyi: no action required here"
	got := m.Strip(text)
	want := "fyi: " + strings.Repeat(" ", len("no action required")) + " here"
	if got != want {
		t.Errorf("Strip() = %q, want %q", got, want)
	}
	if len(got) != len(text) {
		t.Errorf("Strip() changed length from %d to %d", len(text), len(got))
	}
}

func TestNewMatcherDeduplicates(t *testing.T) {
	m := NewMatcher([]string{"Urgent", "urgent", " URGENT ", "", "asap"})
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (terms: %v)", m.Len(), m.Terms())
	}
}
