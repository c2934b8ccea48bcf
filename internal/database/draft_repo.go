package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mixelka/slackmail/pkg/models"
)

// CreateDraft stores a draft awaiting confirmation and fills in its id
func (db *DB) CreateDraft(ctx context.Context, draft *models.SendDraft) error {
	query := `
		INSERT INTO send_drafts (team_id, channel_id, user_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		draft.TeamID,
		draft.ChannelID,
		draft.UserID,
		draft.Payload,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	draft.ID = id
	draft.CreatedAt = now
	return nil
}

// GetDraftByID returns a draft by ID
func (db *DB) GetDraftByID(ctx context.Context, id int64) (*models.SendDraft, error) {
	var draft models.SendDraft
	query := `SELECT * FROM send_drafts WHERE id = ?`
	err := db.GetContext(ctx, &draft, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &draft, nil
}

// DeleteDraft removes a draft after it was sent or cancelled
func (db *DB) DeleteDraft(ctx context.Context, id int64) error {
	query := `DELETE FROM send_drafts WHERE id = ?`
	_, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// PurgeDraftsBefore removes drafts older than the cutoff (abandoned
// confirmations)
func (db *DB) PurgeDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM send_drafts WHERE created_at < ?`
	result, err := db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge drafts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
