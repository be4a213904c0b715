package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mailtriage/mailtriage/internal/config"
	"github.com/mailtriage/mailtriage/internal/report"
)

func TestReportWriterFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Report.Format = "csv"

	tests := []struct {
		name   string
		format string
		output string
		want   string
	}{
		{"flag wins", "json", "out.xlsx", ".json"},
		{"output extension", "", "out.xlsx", ".xlsx"},
		{"unknown extension falls back to config", "", "out.dat", ".csv"},
		{"config", "", "", ".csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := reportWriter(cfg, tt.format, tt.output)
			if err != nil {
				t.Fatalf("reportWriter() error = %v", err)
			}
			if w.Extension() != tt.want {
				t.Errorf("extension = %s, want %s", w.Extension(), tt.want)
			}
		})
	}

	if _, err := reportWriter(cfg, "pdf", ""); err == nil {
		t.Error("reportWriter() expected error for unknown format")
	}
}

func TestLoadDictionaryWithOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("priority:\n  showstopper: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default().Classifier
	cfg.Locales = []string{"en"}
	cfg.KeywordsFile = path

	dict, err := loadDictionary(cfg)
	if err != nil {
		t.Fatalf("loadDictionary() error = %v", err)
	}
	if dict.Priority["showstopper"] != 2 {
		t.Errorf("overlay term missing: %v", dict.Priority["showstopper"])
	}
	if dict.Priority["asap"] != 2 {
		t.Error("built-in term lost")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { cfgFile = "" }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Inbox.Folder != "INBOX" || cfg.Report.Format != "xlsx" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if _, err := report.LabelsFor(cfg.Report.Locale); err != nil {
		t.Errorf("default locale %q has no labels", cfg.Report.Locale)
	}
}
