package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Slack message permalinks look like
// https://workspace.slack.com/archives/C01234ABCD/p1234567890123456
// where the digits are the message timestamp with the decimal point
// removed.
var permalinkRegex = regexp.MustCompile(`^https://[\w-]+\.slack\.com/archives/([A-Z0-9]+)/p(\d+)/?$`)

// MessageLink is a parsed Slack message permalink.
type MessageLink struct {
	ChannelID string
	Timestamp string
}

// IsPermalink reports whether raw looks like a Slack message permalink.
func IsPermalink(raw string) bool {
	_, err := ParsePermalink(raw)
	return err == nil
}

// ParsePermalink parses a Slack message permalink into its channel id and
// message timestamp. The timestamp digits are re-split into
// "<first 10>.<rest>" to match the chat API's message reference format.
func ParsePermalink(raw string) (*MessageLink, error) {
	// Slack wraps URLs in message text as <url> or <url|label>
	raw = strings.Trim(raw, "<>")
	if label := strings.IndexByte(raw, '|'); label >= 0 {
		raw = raw[:label]
	}

	m := permalinkRegex.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("not a Slack message link: %s", raw)
	}

	digits := m[2]
	if len(digits) < 10 {
		return nil, fmt.Errorf("invalid message timestamp in link: %s", raw)
	}

	return &MessageLink{
		ChannelID: m[1],
		Timestamp: digits[:10] + "." + digits[10:],
	}, nil
}
