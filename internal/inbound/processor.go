package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mixelka/slackmail/pkg/models"
)

// RawEmailFetcher fetches raw stored email bytes.
type RawEmailFetcher interface {
	FetchRawEmail(ctx context.Context, key string) ([]byte, error)
}

// MailParser parses raw bytes into an Email.
type MailParser interface {
	Parse(raw []byte) (*models.Email, error)
}

// Deliverer posts an email to a Slack channel with the delivery plane's
// full retry cycle.
type Deliverer interface {
	DeliverWithRetry(ctx context.Context, channelID string, email *models.Email) error
}

// ChannelResolver maps a recipient domain to the Slack channel configured
// for it.
type ChannelResolver interface {
	GetDomainByName(ctx context.Context, domain string) (*models.DomainRef, error)
	ChannelForDomain(ctx context.Context, teamID, domainID string) (*models.ChannelConfig, error)
}

// Record is one inbound email event: where the raw bytes live and who
// the mail was addressed to.
type Record struct {
	ObjectKey  string
	MessageID  string
	Recipients []string
}

// RecordFailure is one failed record inside a batch.
type RecordFailure struct {
	ObjectKey string
	Err       error
}

// BatchError aggregates per-record failures. It is raised only after
// every record in the batch has been attempted.
type BatchError struct {
	Failures []RecordFailure
}

func (e *BatchError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		keys = append(keys, f.ObjectKey)
	}
	return fmt.Sprintf("%d inbound record(s) failed: %s", len(e.Failures), strings.Join(keys, ", "))
}

// Processor turns inbound mail events into Slack posts: fetch, parse,
// resolve the target channel, deliver.
type Processor struct {
	fetcher  RawEmailFetcher
	parser   MailParser
	channels ChannelResolver
	deliver  Deliverer
	logger   *slog.Logger
}

// NewProcessor creates an inbound processor
func NewProcessor(fetcher RawEmailFetcher, parser MailParser, channels ChannelResolver, deliver Deliverer, logger *slog.Logger) *Processor {
	return &Processor{
		fetcher:  fetcher,
		parser:   parser,
		channels: channels,
		deliver:  deliver,
		logger:   logger.With("component", "inbound"),
	}
}

// ProcessBatch handles records strictly in order: each record is fully
// delivered, including its retry cycle, before the next begins. A
// failure never aborts the batch; failures are collected and reported
// together so an at-least-once redelivery retries only the failed
// subset.
func (p *Processor) ProcessBatch(ctx context.Context, records []Record) error {
	var failures []RecordFailure

	for _, rec := range records {
		if err := p.ProcessRecord(ctx, rec); err != nil {
			p.logger.Error("failed to process inbound record",
				"object_key", rec.ObjectKey,
				"error", err,
			)
			failures = append(failures, RecordFailure{ObjectKey: rec.ObjectKey, Err: err})
		}
	}

	if len(failures) > 0 {
		return &BatchError{Failures: failures}
	}
	return nil
}

// ProcessRecord handles a single inbound email event.
func (p *Processor) ProcessRecord(ctx context.Context, rec Record) error {
	raw, err := p.fetcher.FetchRawEmail(ctx, rec.ObjectKey)
	if err != nil {
		return err
	}

	email, err := p.parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse email %s: %w", rec.ObjectKey, err)
	}

	channel, err := p.resolveChannel(ctx, rec, email)
	if err != nil {
		return err
	}

	p.logger.Info("delivering inbound email",
		"object_key", rec.ObjectKey,
		"message_id", email.MessageID,
		"from", email.From.Address,
		"channel", channel,
	)

	return p.deliver.DeliverWithRetry(ctx, channel, email)
}

// resolveChannel finds the Slack channel for the first recipient whose
// domain is configured with an enabled channel mapping.
func (p *Processor) resolveChannel(ctx context.Context, rec Record, email *models.Email) (string, error) {
	recipients := rec.Recipients
	if len(recipients) == 0 {
		for _, a := range email.To {
			recipients = append(recipients, a.Address)
		}
	}

	for _, recipient := range recipients {
		domain := domainPart(recipient)
		if domain == "" {
			continue
		}

		ref, err := p.channels.GetDomainByName(ctx, domain)
		if err != nil {
			continue
		}

		cc, err := p.channels.ChannelForDomain(ctx, ref.TeamID, ref.DomainID)
		if err != nil {
			continue
		}
		if !cc.Enabled {
			continue
		}
		return cc.ChannelID, nil
	}

	return "", fmt.Errorf("no channel configured for recipients %v", recipients)
}

func domainPart(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}
