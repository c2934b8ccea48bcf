package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/mixelka/slackmail/internal/formatter"
	"github.com/mixelka/slackmail/pkg/models"
)

// MessageRef identifies a posted chat message.
type MessageRef struct {
	Channel   string
	Timestamp string
}

// ChatClient is the chat-platform surface the coordinator needs. Errors
// from implementations should be *PlatformError so they can be
// classified.
type ChatClient interface {
	PostMessage(ctx context.Context, channelID string, msg *formatter.FormattedMessage) (MessageRef, error)
	UpdateMessage(ctx context.Context, ref MessageRef, msg *formatter.FormattedMessage) error
	UploadFileToThread(ctx context.Context, channelID, threadTimestamp, filename, content string) error
}

// Config tunes the retry loop.
type Config struct {
	MaxRetries     int           // additional attempts after the first
	InitialBackoff time.Duration // doubled before each subsequent attempt
}

// Coordinator posts formatted emails to Slack, uploads the file fallback
// as a threaded reply, retries classified failures with exponential
// backoff and dead-letters what cannot be delivered.
type Coordinator struct {
	chat       ChatClient
	formatter  *formatter.SlackFormatter
	cfg        Config
	deadLetter Handler
	logger     *slog.Logger
}

// NewCoordinator creates a delivery coordinator. A nil dead-letter
// handler falls back to structured logging.
func NewCoordinator(chat ChatClient, f *formatter.SlackFormatter, cfg Config, deadLetter Handler, logger *slog.Logger) *Coordinator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if deadLetter == nil {
		deadLetter = NewLogHandler(logger)
	}
	return &Coordinator{
		chat:       chat,
		formatter:  f,
		cfg:        cfg,
		deadLetter: deadLetter,
		logger:     logger.With("component", "delivery"),
	}
}

// Post makes a single delivery attempt: format, post, and upload the file
// fallback as a threaded reply under the posted message. A failed upload
// is terminal for the attempt because the text content already landed.
func (c *Coordinator) Post(ctx context.Context, channelID string, email *models.Email) (MessageRef, error) {
	if channelID == "" {
		return MessageRef{}, ErrEmptyChannel
	}

	msg := c.formatter.Format(email)

	ref, err := c.chat.PostMessage(ctx, channelID, msg)
	if err != nil {
		return MessageRef{}, err
	}

	if msg.FileAttachment == nil {
		return ref, nil
	}

	err = c.chat.UploadFileToThread(ctx, ref.Channel, ref.Timestamp, msg.FileAttachment.Filename, msg.FileAttachment.Content)
	if err == nil {
		return ref, nil
	}

	c.logger.Error("failed to upload email body file",
		"channel", channelID,
		"message_id", email.MessageID,
		"error", err,
	)

	// Disclose the missing attachment on the already-posted message
	if updateErr := c.chat.UpdateMessage(ctx, ref, formatter.WithUploadFailureNote(msg)); updateErr != nil {
		c.logger.Error("failed to add upload warning", "channel", channelID, "error", updateErr)
	}

	return ref, &PlatformError{Code: CodeAttachmentUploadFailed, Err: err}
}

// DeliverWithRetry posts with the configured retry budget. Attempt 1 runs
// immediately; attempt n waits InitialBackoff*2^(n-2) first. Non-retryable
// errors stop the loop; exhaustion or a terminal error dead-letters the
// email and re-raises the last error.
func (c *Coordinator) DeliverWithRetry(ctx context.Context, channelID string, email *models.Email) error {
	if channelID == "" {
		// Caller bug, not a delivery failure: no dead letter.
		return ErrEmptyChannel
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.cfg.InitialBackoff * (1 << (attempt - 1))
			c.logger.Warn("retrying delivery",
				"channel", channelID,
				"message_id", email.MessageID,
				"attempt", attempt+1,
				"backoff", wait,
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		attempts++
		_, err := c.Post(ctx, channelID, email)
		if err == nil {
			if attempt > 0 {
				c.logger.Info("delivery succeeded after retry", "channel", channelID, "attempts", attempts)
			}
			return nil
		}
		lastErr = err

		if isNonRetryable(err) {
			c.logger.Error("non-retryable delivery error",
				"channel", channelID,
				"code", ErrorCode(err),
				"error", err,
			)
			break
		}
	}

	record := &models.FailedEmailRecord{
		Email:        email,
		Channel:      channelID,
		ErrorMessage: lastErr.Error(),
		ErrorCode:    ErrorCode(lastErr),
		Timestamp:    time.Now(),
		Attempts:     attempts,
	}
	if err := c.deadLetter.HandleFailedEmail(ctx, record); err != nil {
		c.logger.Error("dead-letter handler failed", "channel", channelID, "error", err)
	}

	return lastErr
}
