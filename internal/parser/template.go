package parser

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/mixelka/slackmail/pkg/models"
)

// EmailTemplate is the fill-in-the-blanks skeleton returned for
// "@bot template". The body starts after the first blank line.
const EmailTemplate = `To: recipient@example.com
From: (optional)
Subject: Your subject here

Write your message here.`

// Slack auto-links addresses and URLs as <mailto:addr|label> / <url|label>.
var (
	mailtoLinkRegex = regexp.MustCompile(`<mailto:([^|>]+)(?:\|[^>]*)?>`)
	urlLinkRegex    = regexp.MustCompile(`<(https?://[^|>]+)(?:\|[^>]*)?>`)
)

// ErrNoRecipients is returned when a template yields no valid To address.
var ErrNoRecipients = fmt.Errorf("no valid recipient addresses")

// ParseTemplate parses a filled email template from Slack message text:
// header lines (To/From/Cc/Bcc/Subject) up to the first blank line, body
// after it. Malformed individual addresses are dropped, not fatal, but an
// empty To list is.
func ParseTemplate(text string) (*models.SendRequest, error) {
	text = unescapeSlackText(text)

	lines := strings.Split(text, "\n")
	req := &models.SendRequest{}

	bodyStart := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			bodyStart = i + 1
			break
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "to":
			req.To = ParseAddressList(value)
		case "from":
			if value != "" && !strings.EqualFold(value, "(optional)") {
				if addr, err := parseAddress(value); err == nil {
					req.From = *addr
				}
			}
		case "cc":
			req.Cc = ParseAddressList(value)
		case "bcc":
			req.Bcc = ParseAddressList(value)
		case "subject":
			req.Subject = value
		}
	}

	if bodyStart >= 0 && bodyStart < len(lines) {
		req.BodyText = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	}

	if len(req.To) == 0 {
		return nil, ErrNoRecipients
	}

	return req, nil
}

// ParseAddressList parses a comma-separated address list. Each entry is
// either a bare address or "Name <address>". Entries that do not parse
// are dropped.
func ParseAddressList(value string) []models.EmailAddress {
	var out []models.EmailAddress
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addr, err := parseAddress(part)
		if err != nil {
			continue
		}
		out = append(out, *addr)
	}
	return out
}

func parseAddress(value string) (*models.EmailAddress, error) {
	parsed, err := mail.ParseAddress(value)
	if err != nil {
		return nil, err
	}
	return &models.EmailAddress{Name: parsed.Name, Address: parsed.Address}, nil
}

// unescapeSlackText undoes Slack's message markup: auto-linked addresses
// and URLs become their raw form, HTML entities are decoded.
func unescapeSlackText(text string) string {
	text = mailtoLinkRegex.ReplaceAllString(text, "$1")
	text = urlLinkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return text
}
