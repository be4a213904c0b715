package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/mailtriage/mailtriage/internal/classify"
	"github.com/mailtriage/mailtriage/internal/scan"
)

type fakeSource struct {
	msgs     []classify.RawMessage
	err      error
	gotLimit *int
}

func (f *fakeSource) Connect(context.Context) error { return f.err }

func (f *fakeSource) FetchMessages(_ context.Context, limit int) ([]classify.RawMessage, error) {
	if f.gotLimit != nil {
		*f.gotLimit = limit
	}
	return f.msgs, nil
}

func (f *fakeSource) Disconnect() error { return nil }

type jsonReport struct {
	ScanID   string `json:"scan_id"`
	Source   string `json:"source"`
	Messages []struct {
		UID      string  `json:"uid"`
		Subject  string  `json:"subject"`
		DueDate  *string `json:"due_date"`
		Priority string  `json:"priority"`
		Pending  bool    `json:"pending"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, src *fakeSource, opts Options) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := classify.New(nil, classify.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	s, err := NewServer(scan.New(c, logger), func() scan.Source { return src }, opts, logger)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func sampleSource() *fakeSource {
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return &fakeSource{msgs: []classify.RawMessage{
		{UID: "7", Subject: "Please review ASAP", Body: "Let me know by Friday", ReceivedAt: monday},
		{UID: "8", Subject: "Weekly digest", ReceivedAt: monday, IsRead: true},
	}}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeSource{}, Options{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReportJSON(t *testing.T) {
	var limit int
	src := sampleSource()
	src.gotLimit = &limit
	s := newTestServer(t, src, Options{Folder: "INBOX", Limit: 100})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if limit != 5 {
		t.Errorf("limit passed to source = %d, want 5", limit)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got jsonReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Source != "INBOX" || got.ScanID == "" {
		t.Errorf("metadata = %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	first := got.Messages[0]
	if first.UID != "7" || first.Priority != "urgent" || !first.Pending || first.DueDate == nil || *first.DueDate != "2024-03-08" {
		t.Errorf("first message = %+v", first)
	}
	if got.Messages[1].DueDate != nil {
		t.Errorf("second message due = %v, want null", *got.Messages[1].DueDate)
	}
}

func TestReportDefaultLimit(t *testing.T) {
	var limit int
	src := sampleSource()
	src.gotLimit = &limit
	s := newTestServer(t, src, Options{Limit: 42})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if limit != 42 {
		t.Errorf("limit = %d, want 42", limit)
	}
}

func TestReportFormats(t *testing.T) {
	s := newTestServer(t, sampleSource(), Options{Locale: "es"})

	t.Run("csv", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report?format=csv", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, `.csv"`) {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !strings.HasPrefix(rec.Body.String(), "UID,Asunto,Remitente") {
			t.Errorf("csv header = %q", strings.SplitN(rec.Body.String(), "\n", 2)[0])
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report?format=xlsx", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		f, err := excelize.OpenReader(rec.Body)
		if err != nil {
			t.Fatalf("invalid workbook: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Errorf("got %d rows, want header plus 2", len(rows))
		}
	})
}

func TestReportBadRequests(t *testing.T) {
	s := newTestServer(t, sampleSource(), Options{})

	tests := []struct {
		name string
		url  string
	}{
		{"negative limit", "/api/report?limit=-1"},
		{"non-numeric limit", "/api/report?limit=ten"},
		{"unknown format", "/api/report?format=pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestReportSourceError(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: errors.New("login failed")}, Options{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "login failed") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReportRateLimit(t *testing.T) {
	s := newTestServer(t, sampleSource(), Options{RateLimit: 2})
	h := s.Handler()

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}

func TestClassifyUpload(t *testing.T) {
	s := newTestServer(t, &fakeSource{}, Options{})

	msg := "From: Ana <ana@example.com>\r\n" +
		"Subject: Contrato urgente\r\n" +
		"Date: Mon, 04 Mar 2024 09:00:00 +0000\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Por favor revisa el contrato antes del 15/03/2024.\r\n"

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(msg)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got jsonReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("got %d messages", len(got.Messages))
	}
	m := got.Messages[0]
	if m.Priority != "urgent" || !m.Pending || m.DueDate == nil || *m.DueDate != "2024-03-15" {
		t.Errorf("message = %+v", m)
	}
}

func TestClassifyRejectsGarbage(t *testing.T) {
	s := newTestServer(t, &fakeSource{}, Options{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader("not a message\r\n")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") {
		t.Fatal("first request rejected")
	}
	if rl.Allow("a") {
		t.Error("second request within window allowed")
	}
	if !rl.Allow("b") {
		t.Error("other client rejected")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("a") {
		t.Error("request after window rejected")
	}
}
