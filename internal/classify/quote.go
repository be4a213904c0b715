package classify

import (
	"regexp"
	"strings"
)

var (
	// "On Mon, Mar 4, 2024 at 10:00 AM Ana <ana@example.com> wrote:", which
	// clients sometimes wrap onto a second line. Spanish clients write
	// "El lun, 4 mar 2024 a las 10:00, Ana (<ana@example.com>) escribió:".
	attributionLine = regexp.MustCompile(`(?im)^[ \t]*(?:on|el)[ \t][^\n]*(?:\n[^\n]*)?[ \t](?:wrote|escribi[oó]):[ \t]*\r?$`)

	originalMessageLine = regexp.MustCompile(`(?im)^[ \t]*-{2,}[ \t]*(?:original message|mensaje original)[ \t]*-{2,}[ \t]*\r?$`)
)

// ownText returns the part of a body written by its sender: everything
// before a reply attribution or an "Original Message" separator, without
// ">" quoted lines. Forwarded content is kept.
func ownText(body string) string {
	if body == "" {
		return ""
	}
	for _, re := range []*regexp.Regexp{attributionLine, originalMessageLine} {
		if loc := re.FindStringIndex(body); loc != nil {
			body = body[:loc[0]]
		}
	}

	if !strings.Contains(body, ">") {
		return body
	}
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
