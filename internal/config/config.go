package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mailtriage/mailtriage/internal/classify"
)

// PasswordEnv overrides inbox.password when set.
const PasswordEnv = "MAILTRIAGE_PASSWORD"

func checkFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %04o; should be 0600", path, perm)
	}
	return nil
}

type Config struct {
	Inbox      InboxConfig      `yaml:"inbox"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Report     ReportConfig     `yaml:"report"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server,omitempty"`
}

// InboxConfig holds IMAP settings for the mailbox to scan
type InboxConfig struct {
	Provider   string `yaml:"provider"`    // "gmail", "outlook", "imap"
	Server     string `yaml:"server"`      // e.g., "imap.gmail.com"
	Port       int    `yaml:"port"`        // e.g., 993
	Security   string `yaml:"security"`    // "tls", "starttls" or "plain"
	Email      string `yaml:"email"`       // Login name, usually the address
	Password   string `yaml:"password"`    // App password; prefer the keyring
	Folder     string `yaml:"folder"`      // Folder to scan (default: "INBOX")
	Limit      int    `yaml:"limit"`       // Newest N messages; 0 scans everything
	TimeoutSec int    `yaml:"timeout_sec"` // Dial and command timeout
}

// ClassifierConfig selects the keyword dictionary and tunes the heuristics
type ClassifierConfig struct {
	Locales      []string `yaml:"locales"`
	KeywordsFile string   `yaml:"keywords_file,omitempty"` // YAML overlay merged on top of the locales
	Workers      int      `yaml:"workers"`

	classify.Options `yaml:",inline"`
}

// ReportConfig controls report output
type ReportConfig struct {
	Format string `yaml:"format"` // xlsx, csv, json, table, sqlite
	Output string `yaml:"output,omitempty"`
	Locale string `yaml:"locale"` // column and value labels: en, es
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".mailtriage", "config.yaml")
}

// Default returns a configuration with every default applied and no inbox
// credentials.
func Default() *Config {
	cfg := &Config{Classifier: ClassifierConfig{Options: classify.DefaultOptions()}}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	if err := checkFilePermissions(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{Classifier: ClassifierConfig{Options: classify.DefaultOptions()}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	// Inbox defaults
	if c.Inbox.Folder == "" {
		c.Inbox.Folder = "INBOX"
	}
	if c.Inbox.Provider == "gmail" && c.Inbox.Server == "" {
		c.Inbox.Server = "imap.gmail.com"
		c.Inbox.Port = 993
	}
	if c.Inbox.Provider == "outlook" && c.Inbox.Server == "" {
		c.Inbox.Server = "outlook.office365.com"
		c.Inbox.Port = 993
	}
	if c.Inbox.Security == "" {
		c.Inbox.Security = "tls"
	}
	if c.Inbox.Port == 0 {
		switch c.Inbox.Security {
		case "tls":
			c.Inbox.Port = 993
		default:
			c.Inbox.Port = 143
		}
	}
	if c.Inbox.TimeoutSec == 0 {
		c.Inbox.TimeoutSec = 30
	}

	// Classifier defaults
	defaults := classify.DefaultOptions()
	if len(c.Classifier.Locales) == 0 {
		c.Classifier.Locales = []string{"en", "es"}
	}
	if len(c.Classifier.DueDateHeaders) == 0 {
		c.Classifier.DueDateHeaders = defaults.DueDateHeaders
	}
	if c.Classifier.MaxHorizon == 0 {
		c.Classifier.MaxHorizon = defaults.MaxHorizon
	}
	if c.Classifier.DeadlineWindow == 0 {
		c.Classifier.DeadlineWindow = defaults.DeadlineWindow
	}
	if c.Classifier.Thresholds == (classify.Thresholds{}) {
		c.Classifier.Thresholds = defaults.Thresholds
	}
	if c.Classifier.Workers == 0 {
		c.Classifier.Workers = runtime.GOMAXPROCS(0)
	}

	// Report defaults
	if c.Report.Format == "" {
		c.Report.Format = "xlsx"
	}
	if c.Report.Locale == "" {
		c.Report.Locale = "es"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks everything except inbox credentials
func (c *Config) Validate() error {
	if err := c.Classifier.Options.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if c.Classifier.Workers < 0 {
		return fmt.Errorf("classifier: workers must not be negative")
	}

	switch c.Report.Format {
	case "xlsx", "csv", "json", "table", "sqlite":
	default:
		return fmt.Errorf("report: unknown format %q (use xlsx, csv, json, table or sqlite)", c.Report.Format)
	}
	switch c.Report.Locale {
	case "en", "es":
	default:
		return fmt.Errorf("report: unknown locale %q (use en or es)", c.Report.Locale)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q (use text or json)", c.Log.Format)
	}

	if c.Inbox.Limit < 0 {
		return fmt.Errorf("inbox: limit must not be negative")
	}
	return nil
}

// ValidateInbox validates inbox configuration (only called when the mailbox is scanned)
func (c *Config) ValidateInbox() error {
	if c.Inbox.Email == "" {
		return fmt.Errorf("inbox: email address is required")
	}
	if c.Inbox.Password == "" {
		return fmt.Errorf("inbox: password is required (set it in config, %s, or run 'mailtriage login')", PasswordEnv)
	}
	if c.Inbox.Server == "" {
		return fmt.Errorf("inbox: IMAP server is required")
	}
	if c.Inbox.Port == 0 {
		return fmt.Errorf("inbox: IMAP port is required")
	}
	switch c.Inbox.Security {
	case "tls", "starttls", "plain":
	default:
		return fmt.Errorf("inbox: unknown security %q (use tls, starttls or plain)", c.Inbox.Security)
	}
	return nil
}
