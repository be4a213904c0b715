package inbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mailtriage/mailtriage/internal/classify"
)

// Meta carries what the mailbox knows about a message besides its content.
type Meta struct {
	UID          string
	InternalDate time.Time // fallback when the Date header is missing or invalid
	Seen         bool
}

// blockElements get a line break after them so adjacent blocks do not run
// together in the extracted text.
const blockElements = "br, p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6, blockquote, pre, table"

// ParseMessage reads an RFC 5322 message into a RawMessage. When the message
// is only partly readable, the fields parsed so far are returned together
// with the error.
func ParseMessage(r io.Reader, meta Meta) (classify.RawMessage, error) {
	raw := classify.RawMessage{
		UID:        meta.UID,
		Headers:    classify.Header{},
		ReceivedAt: meta.InternalDate,
		IsRead:     meta.Seen,
	}

	mr, err := mail.CreateReader(r)
	if mr == nil {
		return raw, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()
	// An unknown charset still yields a usable reader.
	partialErr := err
	if partialErr != nil && !message.IsUnknownCharset(partialErr) {
		return raw, fmt.Errorf("failed to read message: %w", partialErr)
	}

	fillHeaders(&raw, mr.Header)

	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				partialErr = err
				continue
			}
			partialErr = err
			break
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch {
		case ct == "text/plain" && plain == "":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				partialErr = err
				continue
			}
			plain = strings.TrimSpace(string(body))
		case ct == "text/html" && html == "":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				partialErr = err
				continue
			}
			html = string(body)
		}
		if plain != "" {
			break
		}
	}

	switch {
	case plain != "":
		raw.Body = plain
	case html != "":
		text, err := htmlToText(html)
		if err != nil {
			partialErr = errors.Join(partialErr, err)
		}
		raw.Body = text
	}

	if partialErr != nil {
		return raw, fmt.Errorf("message partly parsed: %w", partialErr)
	}
	return raw, nil
}

func fillHeaders(raw *classify.RawMessage, h mail.Header) {
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		raw.Headers.Add(fields.Key(), value)
	}

	if subject, err := h.Subject(); err == nil {
		raw.Subject = strings.TrimSpace(subject)
	} else {
		raw.Subject = strings.TrimSpace(h.Get("Subject"))
	}

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		raw.Sender = formatAddress(from[0])
	} else {
		raw.Sender = strings.TrimSpace(h.Get("From"))
	}

	if date, err := h.Date(); err == nil && !date.IsZero() {
		raw.ReceivedAt = date
	}
}

func formatAddress(a *mail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

// htmlToText extracts readable text from an HTML body. Scripts and styles
// are dropped and block elements end a line.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML body: %w", err)
	}

	doc.Find("script, style, head, noscript").Remove()
	doc.Find(blockElements).AfterHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// ParseFile reads a single .eml file. The file name (without extension)
// becomes the UID and the modification time stands in for the receipt time
// when the message has no usable Date header.
func ParseFile(path string) (classify.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return classify.RawMessage{}, fmt.Errorf("failed to open message file: %w", err)
	}
	defer f.Close()

	meta := Meta{UID: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	if info, err := f.Stat(); err == nil {
		meta.InternalDate = info.ModTime()
	}

	raw, err := ParseMessage(f, meta)
	if err != nil {
		return raw, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}
