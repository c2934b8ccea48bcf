package formatter

import (
	"strconv"
	"strings"

	"github.com/slack-go/slack"

	"github.com/mixelka/slackmail/pkg/models"
)

// Action ids carried in the Send/Cancel interaction payloads.
const (
	ActionSendEmail   = "send_email"
	ActionCancelEmail = "cancel_email"
)

// BuildConfirmation renders a parsed draft as a confirmation message with
// Send and Cancel buttons. The button values carry only the draft id.
func BuildConfirmation(req *models.SendRequest, draftID int64) *FormattedMessage {
	var sb strings.Builder
	sb.WriteString("*To:* " + FormatAddressList(req.To) + "\n")
	if req.From.Address != "" {
		sb.WriteString("*From:* " + req.From.String() + "\n")
	}
	if len(req.Cc) > 0 {
		sb.WriteString("*Cc:* " + FormatAddressList(req.Cc) + "\n")
	}
	sb.WriteString("*Subject:* " + req.Subject)

	preview := req.BodyText
	if runeLen(preview) > 500 {
		preview = truncateRunes(preview, 500) + "..."
	}

	id := strconv.FormatInt(draftID, 10)
	send := slack.NewButtonBlockElement(ActionSendEmail, id,
		slack.NewTextBlockObject(slack.PlainTextType, "Send", false, false))
	send.Style = slack.StylePrimary
	cancel := slack.NewButtonBlockElement(ActionCancelEmail, id,
		slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false))

	return &FormattedMessage{
		PreviewText: "Ready to send: " + req.Subject,
		Blocks: []slack.Block{
			slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "✉️ Ready to send", true, false)),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, sb.String(), false, false), nil, nil),
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, preview, false, false), nil, nil),
			slack.NewActionBlock("send_confirmation", send, cancel),
		},
	}
}

// PlainMessage wraps a single markdown string as a message.
func PlainMessage(text string) *FormattedMessage {
	return &FormattedMessage{
		PreviewText: text,
		Blocks: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		},
	}
}
