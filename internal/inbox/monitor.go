package inbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"github.com/mailtriage/mailtriage/internal/classify"
	"github.com/mailtriage/mailtriage/internal/config"
)

const fetchBatchSize = 50

// Monitor handles the IMAP session for one mailbox
type Monitor struct {
	config config.InboxConfig
	client *client.Client
	logger logrus.FieldLogger
}

// NewMonitor creates a new inbox monitor
func NewMonitor(cfg config.InboxConfig, logger logrus.FieldLogger) *Monitor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Monitor{
		config: cfg,
		logger: logger.WithFields(logrus.Fields{"server": cfg.Server, "folder": cfg.Folder}),
	}
}

// Connect establishes the IMAP connection and logs in
func (m *Monitor) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.config.Server, strconv.Itoa(m.config.Port))
	timeout := time.Duration(m.config.TimeoutSec) * time.Second
	dialer := &net.Dialer{Timeout: timeout}
	tlsConfig := &tls.Config{
		ServerName: m.config.Server,
		MinVersion: tls.VersionTLS12,
	}

	m.logger.WithField("security", m.config.Security).Info("Connecting to IMAP server")

	var (
		c   *client.Client
		err error
	)
	switch m.config.Security {
	case "starttls":
		c, err = client.DialWithDialer(dialer, addr)
		if err == nil {
			if err = c.StartTLS(tlsConfig); err != nil {
				c.Logout() //nolint:errcheck
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	case "plain":
		c, err = client.DialWithDialer(dialer, addr)
	default:
		c, err = client.DialWithDialerTLS(dialer, addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	c.Timeout = timeout

	m.logger.WithField("login", m.config.Email).Debug("Connected, logging in")

	if err := c.Login(m.config.Email, m.config.Password); err != nil {
		c.Logout() //nolint:errcheck
		return fmt.Errorf("failed to login: %w", err)
	}

	m.client = c
	m.logger.Info("Login successful")
	return nil
}

// Disconnect closes the IMAP connection
func (m *Monitor) Disconnect() error {
	if m.client == nil {
		return nil
	}
	err := m.client.Logout()
	m.client = nil
	return err
}

// FetchMessages returns the newest limit messages of the configured folder
// in ascending UID order; limit 0 fetches every message. The folder is opened
// read-only and bodies are fetched with BODY.PEEK, so nothing is marked read.
func (m *Monitor) FetchMessages(ctx context.Context, limit int) ([]classify.RawMessage, error) {
	if m.client == nil {
		return nil, fmt.Errorf("not connected to IMAP server")
	}

	mbox, err := m.client.Select(m.config.Folder, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", m.config.Folder, err)
	}

	m.logger.WithField("messages", mbox.Messages).Info("Mailbox selected")

	if mbox.Messages == 0 {
		return nil, nil
	}

	uids, err := m.client.UidSearch(imap.NewSearchCriteria())
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	uids = newestUIDs(uids, limit)
	if len(uids) == 0 {
		return nil, nil
	}

	m.logger.WithField("count", len(uids)).Info("Fetching messages")

	var out []classify.RawMessage
	for i := 0; i < len(uids); i += fetchBatchSize {
		end := min(i+fetchBatchSize, len(uids))
		batch, err := m.fetchBatch(ctx, uids[i:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}

	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseUint(out[i].UID, 10, 32)
		b, _ := strconv.ParseUint(out[j].UID, 10, 32)
		return a < b
	})
	return out, nil
}

func (m *Monitor) fetchBatch(ctx context.Context, uids []uint32) ([]classify.RawMessage, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchInternalDate,
		imap.FetchUid,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- m.client.UidFetch(seqSet, items, messages)
	}()

	var out []classify.RawMessage
	for {
		select {
		case <-ctx.Done():
			// Closing the connection unblocks UidFetch.
			m.client.Terminate() //nolint:errcheck
			<-done
			m.client = nil
			return nil, ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if err := <-done; err != nil {
					return nil, fmt.Errorf("failed to fetch messages: %w", err)
				}
				return out, nil
			}
			if msg == nil {
				continue
			}
			out = append(out, m.toRawMessage(msg, section))
		}
	}
}

// toRawMessage converts a fetched message. Parse failures are logged and the
// envelope fields are kept, so every fetched UID yields a record.
func (m *Monitor) toRawMessage(msg *imap.Message, section *imap.BodySectionName) classify.RawMessage {
	meta := Meta{
		UID:          strconv.FormatUint(uint64(msg.Uid), 10),
		InternalDate: msg.InternalDate,
		Seen:         hasFlag(msg.Flags, imap.SeenFlag),
	}
	log := m.logger.WithField("uid", meta.UID)

	fallback := fromEnvelope(msg.Envelope, meta)

	r := msg.GetBody(section)
	if r == nil {
		log.Warn("Message has no body section")
		return fallback
	}

	raw, err := ParseMessage(r, meta)
	if err != nil {
		log.WithError(err).Warn("Failed to parse message, keeping envelope fields")
		if raw.Subject == "" {
			raw.Subject = fallback.Subject
		}
		if raw.Sender == "" {
			raw.Sender = fallback.Sender
		}
	}
	if raw.ReceivedAt.IsZero() {
		raw.ReceivedAt = fallback.ReceivedAt
	}
	return raw
}

func fromEnvelope(env *imap.Envelope, meta Meta) classify.RawMessage {
	raw := classify.RawMessage{
		UID:        meta.UID,
		Headers:    classify.Header{},
		ReceivedAt: meta.InternalDate,
		IsRead:     meta.Seen,
	}
	if env == nil {
		return raw
	}
	raw.Subject = env.Subject
	if len(env.From) > 0 {
		from := env.From[0]
		if from.PersonalName != "" {
			raw.Sender = fmt.Sprintf("%s <%s>", from.PersonalName, from.Address())
		} else {
			raw.Sender = from.Address()
		}
	}
	if !env.Date.IsZero() {
		raw.ReceivedAt = env.Date
	}
	return raw
}

// newestUIDs keeps the limit highest UIDs in ascending order.
func newestUIDs(uids []uint32, limit int) []uint32 {
	sorted := append([]uint32(nil), uids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
