package delivery

import (
	"context"
	"log/slog"

	"github.com/mixelka/slackmail/pkg/models"
)

// Handler consumes emails that exhausted their delivery budget.
type Handler interface {
	HandleFailedEmail(ctx context.Context, record *models.FailedEmailRecord) error
}

// LogHandler is the default dead-letter sink: a structured log line that
// operational alerting can key on.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a log-backed dead-letter handler
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger.With("component", "dead_letter")}
}

func (h *LogHandler) HandleFailedEmail(ctx context.Context, record *models.FailedEmailRecord) error {
	h.logger.Error("email delivery dead-lettered",
		"channel", record.Channel,
		"message_id", record.Email.MessageID,
		"from", record.Email.From.Address,
		"subject", record.Email.Subject,
		"error", record.ErrorMessage,
		"error_code", record.ErrorCode,
		"attempts", record.Attempts,
	)
	return nil
}
