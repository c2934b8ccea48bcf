package models

// SendRequest is an outbound email composed in Slack, before validation
// and identity resolution.
type SendRequest struct {
	From       EmailAddress   `json:"from"`
	To         []EmailAddress `json:"to"`
	Cc         []EmailAddress `json:"cc,omitempty"`
	Bcc        []EmailAddress `json:"bcc,omitempty"`
	ReplyTo    *EmailAddress  `json:"reply_to,omitempty"`
	Subject    string         `json:"subject"`
	BodyText   string         `json:"body_text,omitempty"`
	BodyHTML   string         `json:"body_html,omitempty"`
	InReplyTo  string         `json:"in_reply_to,omitempty"`
	References []string       `json:"references,omitempty"`
}

// SendContext identifies where a send originated. Tenant and Domain are
// filled in by the pipeline after resolution, for the mail collaborator's
// own sender formatting and rate limiting.
type SendContext struct {
	TeamID           string        `json:"team_id"`
	ChannelID        string        `json:"channel_id"`
	UserID           string        `json:"user_id"`
	SelectedDomainID string        `json:"selected_domain_id,omitempty"`
	Tenant           *TenantConfig `json:"-"`
	Domain           *Domain       `json:"-"`
}
