package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mixelka/slackmail/pkg/models"
)

// FailedEmail is a dead-lettered email row. The full email travels in
// payload as JSON so an operator can replay it.
type FailedEmail struct {
	ID        int64     `db:"id"`
	MessageID string    `db:"message_id"`
	ChannelID string    `db:"channel_id"`
	FromAddr  string    `db:"from_addr"`
	Subject   string    `db:"subject"`
	Error     string    `db:"error"`
	ErrorCode string    `db:"error_code"`
	Attempts  int       `db:"attempts"`
	FailedAt  time.Time `db:"failed_at"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// HandleFailedEmail persists a dead-lettered delivery. Satisfies the
// delivery coordinator's dead-letter handler contract.
func (db *DB) HandleFailedEmail(ctx context.Context, record *models.FailedEmailRecord) error {
	payload, err := json.Marshal(record.Email)
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	query := `
		INSERT INTO failed_emails (message_id, channel_id, from_addr, subject, error, error_code, attempts, failed_at, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		record.Email.MessageID,
		record.Channel,
		record.Email.From.Address,
		record.Email.Subject,
		record.ErrorMessage,
		record.ErrorCode,
		record.Attempts,
		record.Timestamp,
		string(payload),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to store failed email: %w", err)
	}
	return nil
}

// ListRecentFailedEmails returns the most recently dead-lettered emails
func (db *DB) ListRecentFailedEmails(ctx context.Context, limit int) ([]*FailedEmail, error) {
	if limit <= 0 {
		limit = 50
	}
	var failed []*FailedEmail
	query := `SELECT * FROM failed_emails ORDER BY failed_at DESC LIMIT ?`
	err := db.SelectContext(ctx, &failed, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed emails: %w", err)
	}
	return failed, nil
}
