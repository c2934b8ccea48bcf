package sender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mixelka/slackmail/internal/tenant"
	"github.com/mixelka/slackmail/pkg/models"
)

// Mailer dispatches a sendable email and returns the provider-assigned
// message id. MIME construction and transport-level concerns (rate
// limits, service errors) belong to the implementation.
type Mailer interface {
	SendEmail(ctx context.Context, email *models.Email, sctx *models.SendContext) (string, error)
}

// EmailLogStore appends outbound send audit records.
type EmailLogStore interface {
	PutEmailLog(ctx context.Context, log *models.EmailLog) error
}

// Pipeline runs an outbound send end to end: validation, tenant/domain
// resolution, sender-domain enforcement, dispatch and audit logging. A
// rejection at any step aborts with no partial log write; nothing here
// retries — retry is a delivery-plane concern.
type Pipeline struct {
	resolver *tenant.Resolver
	mailer   Mailer
	logs     EmailLogStore
	logger   *slog.Logger
}

// NewPipeline creates a send pipeline
func NewPipeline(resolver *tenant.Resolver, mailer Mailer, logs EmailLogStore, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		mailer:   mailer,
		logs:     logs,
		logger:   logger.With("component", "send_pipeline"),
	}
}

// Send validates and dispatches an outbound email. It returns the
// message id, preferring the id the mail service assigned over the
// locally generated one.
func (p *Pipeline) Send(ctx context.Context, req *models.SendRequest, sctx *models.SendContext) (string, error) {
	if err := ValidateSendRequest(req); err != nil {
		return "", err
	}

	cfg, domain, err := p.resolver.Resolve(ctx, sctx.TeamID, sctx.SelectedDomainID)
	if err != nil {
		return "", err
	}

	email := &models.Email{
		MessageID:  models.NewMessageID(domain.Domain),
		From:       req.From,
		To:         req.To,
		Cc:         req.Cc,
		Bcc:        req.Bcc,
		ReplyTo:    req.ReplyTo,
		Subject:    req.Subject,
		Body:       models.EmailBody{Text: req.BodyText, HTML: req.BodyHTML},
		Date:       time.Now(),
		InReplyTo:  req.InReplyTo,
		References: req.References,
	}

	if err := AssertSendable(email.From.Address, domain); err != nil {
		return "", err
	}

	sctx.Tenant = cfg
	sctx.Domain = domain

	providerID, err := p.mailer.SendEmail(ctx, email, sctx)
	if err != nil {
		return "", fmt.Errorf("failed to dispatch email: %w", err)
	}

	messageID := email.MessageID
	if providerID != "" {
		messageID = providerID
	}

	now := time.Now()
	toAddresses := make([]string, 0, len(email.To))
	for _, a := range email.To {
		toAddresses = append(toAddresses, a.Address)
	}

	logEntry := &models.EmailLog{
		MessageID:   messageID,
		TeamID:      sctx.TeamID,
		ChannelID:   sctx.ChannelID,
		UserID:      sctx.UserID,
		FromAddress: email.From.Address,
		ToAddresses: toAddresses,
		Subject:     email.Subject,
		Status:      "sent",
		SentAt:      now,
		TTL:         now.Add(models.EmailLogRetention).Unix(),
	}
	if err := p.logs.PutEmailLog(ctx, logEntry); err != nil {
		return "", fmt.Errorf("failed to record email log: %w", err)
	}

	p.logger.Info("email sent",
		"team_id", sctx.TeamID,
		"channel_id", sctx.ChannelID,
		"message_id", messageID,
		"domain", domain.Domain,
	)

	return messageID, nil
}
