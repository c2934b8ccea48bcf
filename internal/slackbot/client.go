package slackbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/slack-go/slack"

	"github.com/mixelka/slackmail/internal/delivery"
	"github.com/mixelka/slackmail/internal/formatter"
)

var errCodeRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// Client wraps the Slack Web API behind the delivery plane's chat
// interface, translating its errors into classified platform errors.
type Client struct {
	api    *slack.Client
	logger *slog.Logger
}

// NewClient creates a Slack API client
func NewClient(botToken string, logger *slog.Logger) *Client {
	return &Client{
		api:    slack.New(botToken),
		logger: logger.With("component", "slack_client"),
	}
}

// PostMessage posts a formatted message and returns its location.
func (c *Client) PostMessage(ctx context.Context, channelID string, msg *formatter.FormattedMessage) (delivery.MessageRef, error) {
	channel, timestamp, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(msg.PreviewText, false),
		slack.MsgOptionBlocks(msg.Blocks...),
	)
	if err != nil {
		return delivery.MessageRef{}, wrapPlatformError(err)
	}
	return delivery.MessageRef{Channel: channel, Timestamp: timestamp}, nil
}

// UpdateMessage replaces a posted message's content in place.
func (c *Client) UpdateMessage(ctx context.Context, ref delivery.MessageRef, msg *formatter.FormattedMessage) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, ref.Channel, ref.Timestamp,
		slack.MsgOptionText(msg.PreviewText, false),
		slack.MsgOptionBlocks(msg.Blocks...),
	)
	if err != nil {
		return wrapPlatformError(err)
	}
	return nil
}

// UploadFileToThread uploads file content as a reply in a message thread.
func (c *Client) UploadFileToThread(ctx context.Context, channelID, threadTimestamp, filename, content string) error {
	_, err := c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:         channelID,
		ThreadTimestamp: threadTimestamp,
		Filename:        filename,
		Title:           filename,
		Content:         content,
		FileSize:        len(content),
	})
	if err != nil {
		return wrapPlatformError(err)
	}
	return nil
}

// MessageText fetches the text of a single channel message by timestamp.
func (c *Client) MessageText(ctx context.Context, channelID, timestamp string) (string, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    timestamp,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return "", wrapPlatformError(err)
	}
	if len(resp.Messages) == 0 {
		return "", fmt.Errorf("message %s not found in channel %s", timestamp, channelID)
	}
	return resp.Messages[0].Text, nil
}

// wrapPlatformError classifies a Slack API error by its platform error
// code so the delivery plane can decide whether to retry.
func wrapPlatformError(err error) error {
	if err == nil {
		return nil
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return &delivery.PlatformError{Code: "rate_limited", Err: err}
	}

	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return &delivery.PlatformError{Code: slackErr.Err, Err: err}
	}

	// The Web API surfaces most failures as a bare error code string.
	msg := strings.TrimSpace(err.Error())
	if errCodeRegex.MatchString(msg) {
		return &delivery.PlatformError{Code: msg, Err: err}
	}

	return &delivery.PlatformError{Code: delivery.CodeUnknownPlatformError, Err: err}
}
