// Package web serves classification reports over HTTP. The surface is
// read-only: every request runs a fresh scan or classifies the uploaded
// message and nothing is kept between requests.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mailtriage/mailtriage/internal/classify"
	"github.com/mailtriage/mailtriage/internal/inbox"
	"github.com/mailtriage/mailtriage/internal/report"
	"github.com/mailtriage/mailtriage/internal/scan"
)

const (
	defaultRateLimit  = 10
	defaultRateWindow = time.Minute
	maxMessageBytes   = 25 << 20
)

// Options configures the server.
type Options struct {
	Addr      string
	Folder    string // reported as the scan source
	Limit     int    // used when the request has no limit parameter
	Locale    string // column labels for csv, xlsx and table output
	RateLimit int    // report requests per client per minute
}

type Server struct {
	scanner     *scan.Scanner
	newSource   func() scan.Source
	opts        Options
	labels      report.Labels
	rateLimiter *RateLimiter
	logger      logrus.FieldLogger
	httpServer  *http.Server
}

// NewServer returns a server that opens a new source for every report
// request.
func NewServer(scanner *scan.Scanner, newSource func() scan.Source, opts Options, logger logrus.FieldLogger) (*Server, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	labels, err := report.LabelsFor(opts.Locale)
	if err != nil {
		return nil, err
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	return &Server{
		scanner:     scanner,
		newSource:   newSource,
		opts:        opts,
		labels:      labels,
		rateLimiter: NewRateLimiter(opts.RateLimit, defaultRateWindow),
		logger:      logger,
	}, nil
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("addr", s.opts.Addr).Info("Starting report server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/classify", s.handleClassify)
		r.With(s.rateLimiter.Middleware).Get("/report", s.handleReport)
	})

	return r
}

// securityHeaders adds security headers to all responses
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		// Reports carry mail subjects and senders.
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": report.Formats()})
}

// handleReport scans the mailbox and returns the report.
// Query parameters: limit (newest N messages), format (default json).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.Limit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	writer, ok := s.writer(w, r)
	if !ok {
		return
	}

	rep, err := s.scanner.Run(r.Context(), s.newSource(), scan.Options{Limit: limit, Name: s.opts.Folder})
	if err != nil {
		s.logger.WithError(err).Error("Scan failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeReport(w, writer, rep)
}

// handleClassify classifies a single RFC 5322 message sent as the request
// body.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	writer, ok := s.writer(w, r)
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
	msg, err := inbox.ParseMessage(body, inbox.Meta{UID: "1", InternalDate: time.Now()})
	if err != nil {
		if msg.Subject == "" && msg.Body == "" && len(msg.Headers) == 0 {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.WithError(err).Warn("Classifying partly parsed message")
	}

	rep := s.scanner.Classify([]classify.RawMessage{msg}, scan.Options{Name: "upload"})
	s.writeReport(w, writer, rep)
}

func (s *Server) writer(w http.ResponseWriter, r *http.Request) (report.Writer, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	writer, err := report.NewWriter(format, s.labels)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return writer, true
}

// writeReport renders into memory first so a rendering error can still be
// reported with a proper status.
func (s *Server) writeReport(w http.ResponseWriter, writer report.Writer, rep *report.Report) {
	var buf bytes.Buffer
	if err := writer.Write(&buf, rep); err != nil {
		s.logger.WithError(err).Error("Failed to render report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", writer.ContentType())
	if _, isJSON := writer.(*report.JSONWriter); !isJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report-"+rep.ID+writer.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
