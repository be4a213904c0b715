package keywords

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIncludesBothLocales(t *testing.T) {
	d := Default()

	checks := []struct {
		term string
		want int
	}{
		{"asap", 2},
		{"urgente", 2},
		{"important", 1},
		{"baja prioridad", -1},
	}
	for _, c := range checks {
		if got, ok := d.Priority[c.term]; !ok || got != c.want {
			t.Errorf("Priority[%q] = %d (present %v), want %d", c.term, got, ok, c.want)
		}
	}

	if d.Months["marzo"] != time.March || d.Months["march"] != time.March {
		t.Error("expected both English and Spanish month names")
	}
	if d.Weekdays["miercoles"] != time.Wednesday {
		t.Error("expected folded Spanish weekday names")
	}
	if d.PriorityHeaders["x-priority"]["1"] != 1 {
		t.Error("expected header vocabularies in default dictionary")
	}
}

func TestForLocales(t *testing.T) {
	d, err := ForLocales("es")
	if err != nil {
		t.Fatalf("ForLocales() error = %v", err)
	}
	if _, ok := d.Priority["asap"]; ok {
		t.Error("Spanish-only dictionary should not contain English terms")
	}
	if _, ok := d.PriorityHeaders["importance"]; !ok {
		t.Error("header vocabulary should be present for every locale")
	}

	if _, err := ForLocales("fr"); err == nil {
		t.Error("ForLocales(fr) expected error for unknown locale")
	}
}

func TestMergeLaterWins(t *testing.T) {
	base := &Dictionary{Priority: map[string]int{"important": 1}, Deadline: []string{"due"}}
	overlay := &Dictionary{Priority: map[string]int{"IMPORTANT": 2}, Deadline: []string{"due", "deadline"}}

	got := Merge(base, overlay)
	if got.Priority["important"] != 2 {
		t.Errorf("Priority[important] = %d, want 2", got.Priority["important"])
	}
	if len(got.Deadline) != 2 {
		t.Errorf("Deadline = %v, want 2 unique entries", got.Deadline)
	}
}

func TestValidate(t *testing.T) {
	d := &Dictionary{Months: map[string]time.Month{"smarch": 13}}
	if err := d.Validate(); err == nil {
		t.Error("Validate() expected error for invalid month")
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	overlay := `
priority:
  showstopper: 2
  fyi: 0
pending_strong:
  - sign off
`
	if err := os.WriteFile(path, []byte(overlay), 0600); err != nil {
		t.Fatal(err)
	}

	d, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if d.Priority["showstopper"] != 2 {
		t.Errorf("Priority[showstopper] = %d, want 2", d.Priority["showstopper"])
	}
	if d.Priority["fyi"] != 0 {
		t.Errorf("Priority[fyi] = %d, want 0 after override", d.Priority["fyi"])
	}
	if d.Priority["asap"] != 2 {
		t.Error("base terms should survive the overlay")
	}
	if !NewMatcher(d.PendingStrong).Contains("please sign off today") {
		t.Error("overlay pending term should be matchable")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), Default()); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}
