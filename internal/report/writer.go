package report

import (
	"fmt"
	"io"
	"sort"
)

// Writer renders a report in one format.
type Writer interface {
	Write(w io.Writer, rep *Report) error
	ContentType() string
	Extension() string
}

var writers = map[string]func(Labels) Writer{
	"xlsx":   func(l Labels) Writer { return &XLSXWriter{Labels: l} },
	"csv":    func(l Labels) Writer { return &CSVWriter{Labels: l} },
	"json":   func(Labels) Writer { return &JSONWriter{Indent: true} },
	"table":  func(l Labels) Writer { return &TableWriter{Labels: l} },
	"sqlite": func(Labels) Writer { return &SQLiteWriter{} },
}

// Formats returns the supported format names.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewWriter returns the writer for format.
func NewWriter(format string, labels Labels) (Writer, error) {
	build, ok := writers[format]
	if !ok {
		return nil, fmt.Errorf("unknown report format %q (available: %v)", format, Formats())
	}
	return build(labels), nil
}
