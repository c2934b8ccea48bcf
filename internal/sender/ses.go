package sender

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/mixelka/slackmail/pkg/models"
)

// SESMailer dispatches emails through AWS SES v2.
type SESMailer struct {
	client *sesv2.Client
	logger *slog.Logger
}

// NewSESMailer creates an SES-backed mailer
func NewSESMailer(cfg aws.Config, logger *slog.Logger) *SESMailer {
	return &SESMailer{
		client: sesv2.NewFromConfig(cfg),
		logger: logger.With("component", "ses_mailer"),
	}
}

// SendEmail delivers a single email through SES and returns the SES
// message id.
func (s *SESMailer) SendEmail(ctx context.Context, email *models.Email, sctx *models.SendContext) (string, error) {
	body := &types.Body{}
	if email.Body.Text != "" {
		body.Text = &types.Content{Data: aws.String(email.Body.Text), Charset: aws.String("UTF-8")}
	}
	if email.Body.HTML != "" {
		body.Html = &types.Content{Data: aws.String(email.Body.HTML), Charset: aws.String("UTF-8")}
	}

	message := &types.Message{
		Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
		Body:    body,
	}

	// Threading headers for replies
	if email.InReplyTo != "" {
		message.Headers = append(message.Headers, types.MessageHeader{
			Name:  aws.String("In-Reply-To"),
			Value: aws.String(email.InReplyTo),
		})
	}
	if len(email.References) > 0 {
		message.Headers = append(message.Headers, types.MessageHeader{
			Name:  aws.String("References"),
			Value: aws.String(strings.Join(email.References, " ")),
		})
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From.String()),
		Destination: &types.Destination{
			ToAddresses:  addressStrings(email.To),
			CcAddresses:  addressStrings(email.Cc),
			BccAddresses: addressStrings(email.Bcc),
		},
		Content: &types.EmailContent{Simple: message},
	}

	if email.ReplyTo != nil {
		input.ReplyToAddresses = []string{email.ReplyTo.Address}
	}
	if sctx.Domain != nil && sctx.Domain.SESIdentityArn != "" {
		input.FromEmailAddressIdentityArn = aws.String(sctx.Domain.SESIdentityArn)
	}
	if sctx.TeamID != "" {
		input.EmailTags = []types.MessageTag{
			{Name: aws.String("team_id"), Value: aws.String(sctx.TeamID)},
			{Name: aws.String("channel_id"), Value: aws.String(sctx.ChannelID)},
		}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to send via SES: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	s.logger.Info("dispatched via SES", "ses_message_id", messageID, "to_count", len(email.To))
	return messageID, nil
}

func addressStrings(addrs []models.EmailAddress) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Address)
	}
	return out
}
