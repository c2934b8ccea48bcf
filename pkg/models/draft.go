package models

import "time"

// SendDraft is a parsed outbound email waiting for Send/Cancel
// confirmation. The draft id travels in the Slack button value so the
// interaction payload stays small.
type SendDraft struct {
	ID        int64     `db:"id"`
	TeamID    string    `db:"team_id"`
	ChannelID string    `db:"channel_id"`
	UserID    string    `db:"user_id"`
	Payload   string    `db:"payload"` // JSON-encoded SendRequest
	CreatedAt time.Time `db:"created_at"`
}
