package scan

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/mailtriage/mailtriage/internal/classify"
)

type fakeSource struct {
	msgs         []classify.RawMessage
	connectErr   error
	fetchErr     error
	gotLimit     int
	disconnected bool
}

func (f *fakeSource) Connect(context.Context) error { return f.connectErr }

func (f *fakeSource) FetchMessages(_ context.Context, limit int) ([]classify.RawMessage, error) {
	f.gotLimit = limit
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit > 0 && len(f.msgs) > limit {
		return f.msgs[len(f.msgs)-limit:], nil
	}
	return f.msgs, nil
}

func (f *fakeSource) Disconnect() error {
	f.disconnected = true
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newScanner(t *testing.T) *Scanner {
	t.Helper()
	c, err := classify.New(nil, classify.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return New(c, quietLogger())
}

func TestRun(t *testing.T) {
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{msgs: []classify.RawMessage{
		{UID: "1", Subject: "Newsletter", ReceivedAt: monday.Add(-time.Hour), IsRead: true},
		{UID: "2", Subject: "Please review ASAP", Body: "Let me know by Friday", ReceivedAt: monday},
		{UID: "3", Subject: "Lunch?", ReceivedAt: monday.Add(time.Hour), IsRead: true},
	}}

	rep, err := newScanner(t).Run(context.Background(), src, Options{Limit: 10, Name: "INBOX"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !src.disconnected {
		t.Error("source was not disconnected")
	}
	if src.gotLimit != 10 {
		t.Errorf("limit passed = %d, want 10", src.gotLimit)
	}
	if rep.ID == "" || rep.Source != "INBOX" {
		t.Errorf("report metadata = %q %q", rep.ID, rep.Source)
	}
	if len(rep.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rep.Rows))
	}

	first := rep.Rows[0]
	if first.UID != "2" {
		t.Fatalf("first row UID = %s, want unread message 2", first.UID)
	}
	if first.Priority != classify.Urgent || !first.Pending || first.Due == nil || first.Due.String() != "2024-03-08" {
		t.Errorf("first row = %+v", first)
	}
	if rep.Rows[1].UID != "3" || rep.Rows[2].UID != "1" {
		t.Errorf("read rows not newest first: %s, %s", rep.Rows[1].UID, rep.Rows[2].UID)
	}
}

func TestRunErrors(t *testing.T) {
	s := newScanner(t)

	src := &fakeSource{connectErr: errors.New("refused")}
	if _, err := s.Run(context.Background(), src, Options{}); err == nil {
		t.Error("Run() expected connect error")
	}

	src = &fakeSource{fetchErr: errors.New("timeout")}
	if _, err := s.Run(context.Background(), src, Options{}); err == nil {
		t.Error("Run() expected fetch error")
	}
	if !src.disconnected {
		t.Error("source should be disconnected after a fetch error")
	}
}

func TestRunEmptyMailbox(t *testing.T) {
	rep, err := newScanner(t).Run(context.Background(), &fakeSource{}, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rep.Rows))
	}
}

func TestReportIDMatchesLogs(t *testing.T) {
	c, err := classify.New(nil, classify.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s := New(c, logger)

	msgs := []classify.RawMessage{
		{UID: "1", Subject: "Urgent", ReceivedAt: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name string
		scan func(*Scanner) (string, error)
	}{
		{
			name: "run",
			scan: func(s *Scanner) (string, error) {
				rep, err := s.Run(context.Background(), &fakeSource{msgs: msgs}, Options{})
				if err != nil {
					return "", err
				}
				return rep.ID, nil
			},
		},
		{
			name: "classify",
			scan: func(s *Scanner) (string, error) {
				return s.Classify(msgs, Options{}).ID, nil
			},
		},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			id, err := tt.scan(s)
			if err != nil {
				t.Fatalf("scan error = %v", err)
			}
			if id == "" {
				t.Fatal("report ID is empty")
			}
			if seen[id] {
				t.Errorf("report ID %s reused", id)
			}
			seen[id] = true

			entries := hook.AllEntries()
			if len(entries) == 0 {
				t.Fatal("no log entries")
			}
			for _, e := range entries {
				if got := e.Data["scan_id"]; got != id {
					t.Errorf("%q logged scan_id %v, want %s", e.Message, got, id)
				}
			}
		})
	}
}
