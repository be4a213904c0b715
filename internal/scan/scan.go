// Package scan runs one classification pass: fetch messages from a source,
// classify them and build the sorted report.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mailtriage/mailtriage/internal/classify"
	"github.com/mailtriage/mailtriage/internal/report"
)

// Source yields raw messages. inbox.Monitor is the IMAP implementation.
type Source interface {
	Connect(ctx context.Context) error
	FetchMessages(ctx context.Context, limit int) ([]classify.RawMessage, error)
	Disconnect() error
}

// Options controls a scan.
type Options struct {
	Limit   int    // newest N messages; 0 means all
	Workers int    // classification goroutines; 0 means GOMAXPROCS
	Name    string // recorded as the report source, e.g. the folder
}

// Scanner ties a source to a classifier.
type Scanner struct {
	classifier *classify.Classifier
	logger     logrus.FieldLogger
	now        func() time.Time
}

// New returns a scanner.
func New(c *classify.Classifier, logger logrus.FieldLogger) *Scanner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scanner{classifier: c, logger: logger, now: time.Now}
}

// Run connects to src, fetches up to opts.Limit messages and returns the
// classified report. The connection is closed before Run returns.
func (s *Scanner) Run(ctx context.Context, src Source, opts Options) (*report.Report, error) {
	id := uuid.NewString()
	log := s.logger.WithField("scan_id", id)
	started := s.now()

	if err := src.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := src.Disconnect(); err != nil {
			log.WithError(err).Warn("Failed to disconnect")
		}
	}()

	msgs, err := src.FetchMessages(ctx, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	log.WithField("count", len(msgs)).Info("Fetched messages")

	rep := s.build(id, msgs, opts)

	log.WithFields(logrus.Fields{
		"count":    len(rep.Rows),
		"duration": s.now().Sub(started).Round(time.Millisecond).String(),
	}).Info("Scan complete")
	return rep, nil
}

// Classify builds a report from messages already in memory, such as parsed
// .eml files.
func (s *Scanner) Classify(msgs []classify.RawMessage, opts Options) *report.Report {
	return s.build(uuid.NewString(), msgs, opts)
}

func (s *Scanner) build(id string, msgs []classify.RawMessage, opts Options) *report.Report {
	log := s.logger.WithField("scan_id", id)
	results := s.classifier.ClassifyAll(msgs, opts.Workers)
	rows := report.Build(msgs, results)
	report.Sort(rows)

	for _, r := range results {
		log.WithFields(logrus.Fields{
			"uid":      r.UID,
			"priority": r.Priority.String(),
			"due":      dueField(r.DueDate),
			"pending":  r.IsPending,
		}).Debug("Classified message")
	}

	return &report.Report{
		ID:          id,
		Source:      opts.Name,
		GeneratedAt: s.now(),
		Rows:        rows,
	}
}

func dueField(d *classify.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
