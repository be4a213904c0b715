package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mailtriage/mailtriage/internal/classify"
	"github.com/mailtriage/mailtriage/internal/config"
	"github.com/mailtriage/mailtriage/internal/credential"
	"github.com/mailtriage/mailtriage/internal/inbox"
	"github.com/mailtriage/mailtriage/internal/keywords"
	"github.com/mailtriage/mailtriage/internal/report"
	"github.com/mailtriage/mailtriage/internal/scan"
	"github.com/mailtriage/mailtriage/internal/web"
)

var (
	cfgFile  string
	logLevel string
)

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "mailtriage",
		Short: "mailtriage - Prioritize a mailbox and find what needs an answer",
		Long: `mailtriage scans an IMAP mailbox and classifies every message by
priority, due date and whether it still waits for an action from you.

The result is written as a spreadsheet, CSV, JSON, a terminal table or a
SQLite file. The mailbox is opened read-only; nothing is marked as read.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mailtriage/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(keywordsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func scanCmd() *cobra.Command {
	var (
		limit  int
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the mailbox and write the classification report",
		Long: `Connect to the configured IMAP mailbox, fetch the newest messages,
classify them and write the report. Without --output the report goes to
stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cmd.Flags().Changed("limit"), limit, format, output)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Newest N messages to scan (0 scans all; default from config)")
	cmd.Flags().StringVar(&format, "format", "", "Report format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func classifyCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "classify FILE.eml...",
		Short: "Classify message files without connecting to a mailbox",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(args, format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Report format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve classification reports over HTTP",
		Long: `Start a local HTTP server. Each GET /api/report runs a fresh scan of the
configured mailbox; POST /api/classify classifies a single uploaded message.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 8080)")

	return cmd
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the IMAP password in the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin()
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the IMAP password from the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := credential.Delete(credential.Key(cfg.Inbox.Server, cfg.Inbox.Email)); err != nil {
				return err
			}
			fmt.Println("Password removed from keyring")
			return nil
		},
	}
}

func keywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Print the effective keyword dictionary as YAML",
		Long: `Print the dictionary built from the configured locales and keywords file.
The output can be edited and used as the keywords_file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dict, err := loadDictionary(cfg.Classifier)
			if err != nil {
				return err
			}
			data, err := dict.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist.
func loadConfig() (*config.Config, error) {
	path := resolveConfigPath()
	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func loadDictionary(cfg config.ClassifierConfig) (*keywords.Dictionary, error) {
	dict, err := keywords.ForLocales(cfg.Locales...)
	if err != nil {
		return nil, err
	}
	if cfg.KeywordsFile == "" {
		return dict, nil
	}
	return keywords.LoadFile(cfg.KeywordsFile, dict)
}

func newScanner(cfg *config.Config, logger logrus.FieldLogger) (*scan.Scanner, error) {
	dict, err := loadDictionary(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	c, err := classify.New(dict, cfg.Classifier.Options)
	if err != nil {
		return nil, err
	}
	return scan.New(c, logger), nil
}

// setup loads the config, builds the logger and scanner, and resolves the
// IMAP password when the mailbox will be used.
func setup(needInbox bool) (*config.Config, *logrus.Logger, *scan.Scanner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	if needInbox {
		if err := credential.NewResolver().Resolve(&cfg.Inbox); err != nil {
			return nil, nil, nil, err
		}
		if err := cfg.ValidateInbox(); err != nil {
			return nil, nil, nil, err
		}
	}
	scanner, err := newScanner(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, scanner, nil
}

func runScan(ctx context.Context, limitSet bool, limit int, format, output string) error {
	cfg, logger, scanner, err := setup(true)
	if err != nil {
		return err
	}
	if !limitSet {
		limit = cfg.Inbox.Limit
	}
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	writer, err := reportWriter(cfg, format, output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor := inbox.NewMonitor(cfg.Inbox, logger)
	rep, err := scanner.Run(ctx, monitor, scan.Options{
		Limit:   limit,
		Workers: cfg.Classifier.Workers,
		Name:    cfg.Inbox.Folder,
	})
	if err != nil {
		return err
	}

	return writeReport(writer, rep, output, logger)
}

func runClassify(paths []string, format, output string) error {
	cfg, logger, scanner, err := setup(false)
	if err != nil {
		return err
	}
	writer, err := reportWriter(cfg, format, output)
	if err != nil {
		return err
	}

	msgs := make([]classify.RawMessage, 0, len(paths))
	for _, path := range paths {
		msg, err := inbox.ParseFile(path)
		if err != nil {
			if msg.UID == "" {
				return err
			}
			logger.WithError(err).Warn("Message partly parsed")
		}
		msgs = append(msgs, msg)
	}

	rep := scanner.Classify(msgs, scan.Options{Workers: cfg.Classifier.Workers, Name: "files"})
	return writeReport(writer, rep, output, logger)
}

// reportWriter picks the format from the flag, the output extension or the
// config, in that order. A binary format bound for a terminal becomes a table.
func reportWriter(cfg *config.Config, format, output string) (report.Writer, error) {
	if format == "" && output != "" {
		ext := strings.TrimPrefix(filepath.Ext(output), ".")
		for _, f := range report.Formats() {
			if f == ext {
				format = f
			}
		}
	}
	if format == "" {
		format = cfg.Report.Format
	}
	if output == "" && (format == "xlsx" || format == "sqlite") {
		if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			format = "table"
		}
	}
	labels, err := report.LabelsFor(cfg.Report.Locale)
	if err != nil {
		return nil, err
	}
	return report.NewWriter(format, labels)
}

func writeReport(writer report.Writer, rep *report.Report, output string, logger logrus.FieldLogger) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writer.Write(w, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	sum := rep.Summarize()
	logger.WithFields(logrus.Fields{
		"scan_id":  rep.ID,
		"messages": sum.Total,
		"unread":   sum.Unread,
		"pending":  sum.Pending,
		"due":      sum.WithDue,
		"output":   output,
	}).Info("Report written")
	return nil
}

func runServe(port int) error {
	cfg, logger, scanner, err := setup(true)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	inboxCfg := cfg.Inbox
	server, err := web.NewServer(scanner, func() scan.Source {
		return inbox.NewMonitor(inboxCfg, logger)
	}, web.Options{
		Addr:   fmt.Sprintf("%s:%d", cfg.Server.Host, port),
		Folder: inboxCfg.Folder,
		Limit:  inboxCfg.Limit,
		Locale: cfg.Report.Locale,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx) //nolint:errcheck
	}()

	fmt.Printf("Serving reports at http://%s:%d/api/report\n", cfg.Server.Host, port)
	fmt.Println("Press Ctrl+C to stop")
	return server.Start()
}

func runLogin() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Inbox.Email == "" || cfg.Inbox.Server == "" {
		return fmt.Errorf("inbox email and server must be configured first (run 'mailtriage init')")
	}

	pw, err := credential.PromptPassword(os.Stdin, os.Stderr, fmt.Sprintf("IMAP password for %s: ", cfg.Inbox.Email))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if pw == "" {
		return fmt.Errorf("empty password")
	}

	if err := credential.Set(credential.Key(cfg.Inbox.Server, cfg.Inbox.Email), pw); err != nil {
		return err
	}
	fmt.Printf("Password stored in keyring for %s\n", cfg.Inbox.Email)
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("mailtriage configuration setup")
	fmt.Println("==============================")
	fmt.Println()

	cfg := config.Default()

	fmt.Println("Mailbox")
	fmt.Println()

	cfg.Inbox.Provider = promptDefault(reader, "Provider (gmail, outlook, imap)", "gmail")
	cfg.Inbox.Email = prompt(reader, "Email address: ")
	if cfg.Inbox.Provider == "imap" {
		cfg.Inbox.Server = prompt(reader, "IMAP server: ")
		cfg.Inbox.Security = promptDefault(reader, "Security (tls, starttls, plain)", "tls")
		if port, err := strconv.Atoi(promptDefault(reader, "Port", "993")); err == nil {
			cfg.Inbox.Port = port
		}
	} else {
		cfg.Inbox.Server, cfg.Inbox.Port = "", 0
	}
	cfg.Inbox.Folder = promptDefault(reader, "Folder", "INBOX")

	fmt.Println()
	fmt.Println("Report")
	fmt.Println()

	cfg.Report.Format = promptDefault(reader, "Format ("+strings.Join(report.Formats(), ", ")+")", cfg.Report.Format)
	cfg.Report.Locale = promptDefault(reader, "Column language (en, es)", cfg.Report.Locale)
	cfg.Classifier.Locales = strings.Fields(strings.ReplaceAll(
		promptDefault(reader, "Keyword languages (comma separated)", strings.Join(cfg.Classifier.Locales, ",")), ",", " "))

	// Recompute provider defaults for the answers above.
	path := resolveConfigPath()
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", path)
	fmt.Println("Run 'mailtriage login' to store your IMAP password in the system keyring.")
	return nil
}

func prompt(reader *bufio.Reader, message string) string {
	fmt.Print(message)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptDefault(reader *bufio.Reader, label, def string) string {
	if v := prompt(reader, fmt.Sprintf("%s [%s]: ", label, def)); v != "" {
		return v
	}
	return def
}
