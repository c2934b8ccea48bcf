package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmailAddress represents a single mailbox, optionally with a display name
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// String renders the address as "Name <address>" or the bare address
func (a EmailAddress) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s <%s>", a.Name, a.Address)
	}
	return a.Address
}

// EmailBody holds the text and/or HTML representation of an email body
type EmailBody struct {
	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`
}

// Email is a parsed or outbound email message. Immutable once constructed.
type Email struct {
	MessageID  string         `json:"message_id"`
	From       EmailAddress   `json:"from"`
	To         []EmailAddress `json:"to"`
	Cc         []EmailAddress `json:"cc,omitempty"`
	Bcc        []EmailAddress `json:"bcc,omitempty"`
	ReplyTo    *EmailAddress  `json:"reply_to,omitempty"`
	Subject    string         `json:"subject"`
	Body       EmailBody      `json:"body"`
	Date       time.Time      `json:"date"`
	InReplyTo  string         `json:"in_reply_to,omitempty"`
	References []string       `json:"references,omitempty"`
}

// NewMessageID generates a message id in the form <timestamp.random@domain>
func NewMessageID(domain string) string {
	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), uuid.NewString(), domain)
}
