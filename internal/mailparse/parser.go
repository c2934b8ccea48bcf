package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/mixelka/slackmail/pkg/models"
)

// fallbackIDDomain is used for generated message ids when the parsed
// message carries no Message-ID header.
const fallbackIDDomain = "parser.slackmail.local"

// Parser turns raw RFC-5322/MIME bytes into an Email.
type Parser struct{}

// NewParser creates a MIME parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses a raw email. Unknown charsets and malformed parts are
// tolerated as far as the underlying reader allows; a missing Message-ID
// is replaced with a generated one.
func (p *Parser) Parse(raw []byte) (*models.Email, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && mr == nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	email := &models.Email{}

	h := mr.Header
	email.Subject, _ = h.Subject()
	email.Date, _ = h.Date()

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		email.From = models.EmailAddress{Name: from[0].Name, Address: from[0].Address}
	}
	email.To = addressList(&h, "To")
	email.Cc = addressList(&h, "Cc")
	if replyTo, err := h.AddressList("Reply-To"); err == nil && len(replyTo) > 0 {
		email.ReplyTo = &models.EmailAddress{Name: replyTo[0].Name, Address: replyTo[0].Address}
	}

	if id, err := h.MessageID(); err == nil && id != "" {
		email.MessageID = id
	} else {
		email.MessageID = models.NewMessageID(fallbackIDDomain)
	}
	if ids, err := h.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		email.InReplyTo = ids[0]
	}
	if refs, err := h.MsgIDList("References"); err == nil {
		email.References = refs
	}

	// Walk the body parts, keeping the first text/plain and text/html
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		ct, _, _ := inline.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(ct, "text/plain") && email.Body.Text == "":
			email.Body.Text = string(body)
		case strings.HasPrefix(ct, "text/html") && email.Body.HTML == "":
			email.Body.HTML = string(body)
		}
	}

	return email, nil
}

func addressList(h *mail.Header, key string) []models.EmailAddress {
	addrs, err := h.AddressList(key)
	if err != nil || len(addrs) == 0 {
		return nil
	}
	out := make([]models.EmailAddress, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, models.EmailAddress{Name: a.Name, Address: a.Address})
	}
	return out
}
