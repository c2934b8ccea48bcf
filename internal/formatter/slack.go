package formatter

import (
	"strings"

	"github.com/slack-go/slack"

	"github.com/mixelka/slackmail/internal/parser"
	"github.com/mixelka/slackmail/pkg/models"
)

const (
	headerPrefix = "📧 "

	// Slack's header block caps at 150 characters; 140 leaves headroom
	// for multi-byte width quirks.
	maxSubjectLen = 140

	// Slack's section text caps at 3000 characters; 2800 is the safety
	// margin before falling back to a file attachment.
	maxBodyLen = 2800

	attachedNote   = "📎 _Full email body attached as file._"
	noBodyFallback = "(no body)"
)

// FileAttachment is the full body of an oversized email, uploaded as a
// threaded reply instead of being embedded.
type FileAttachment struct {
	Content  string
	Filename string
}

// FormattedMessage is an email rendered for Slack. Derived, never
// persisted; recomputed per delivery attempt.
type FormattedMessage struct {
	PreviewText    string
	Blocks         []slack.Block
	FileAttachment *FileAttachment
}

// SlackFormatter renders emails as Slack Block Kit messages
type SlackFormatter struct {
	html *parser.HTMLParser
}

// NewSlackFormatter creates a new Slack formatter
func NewSlackFormatter() *SlackFormatter {
	return &SlackFormatter{html: parser.NewHTMLParser()}
}

// Format renders an email into blocks, preview text and an optional file
// attachment. It is pure: the same email always yields the same message.
func (f *SlackFormatter) Format(email *models.Email) *FormattedMessage {
	from := email.From.String()
	body := f.bodyText(email)

	msg := &FormattedMessage{
		PreviewText: headerPrefix + email.Subject + " from " + from,
	}

	shownBody := body
	if runeLen(body) > maxBodyLen {
		shownBody = truncateRunes(body, maxBodyLen)
		msg.FileAttachment = &FileAttachment{
			Content:  body,
			Filename: "email-body-" + strings.Trim(email.MessageID, "<>") + ".txt",
		}
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*From:*\n"+from, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*To:*\n"+FormatAddressList(email.To), false, false),
	}
	if len(email.Cc) > 0 {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Cc:*\n"+FormatAddressList(email.Cc), false, false))
	}

	msg.Blocks = []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, headerText(email.Subject), true, false)),
		slack.NewSectionBlock(nil, fields, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, shownBody, false, false), nil, nil),
	}

	if msg.FileAttachment != nil {
		msg.Blocks = append(msg.Blocks,
			slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, attachedNote, false, false)))
	}
	if !email.Date.IsZero() {
		msg.Blocks = append(msg.Blocks,
			slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, email.Date.Format("Jan 2, 2006 15:04 MST"), false, false)))
	}

	return msg
}

// WithUploadFailureNote returns a copy of the message with a visible
// warning that the full body could not be attached.
func WithUploadFailureNote(msg *FormattedMessage) *FormattedMessage {
	out := &FormattedMessage{
		PreviewText:    msg.PreviewText,
		Blocks:         make([]slack.Block, 0, len(msg.Blocks)+1),
		FileAttachment: msg.FileAttachment,
	}
	out.Blocks = append(out.Blocks, msg.Blocks...)
	out.Blocks = append(out.Blocks,
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, "⚠️ The full email body could not be uploaded.", false, false)))
	return out
}

// FormatAddressList joins addresses as "Name <address>" with ", "
func FormatAddressList(addrs []models.EmailAddress) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}

// bodyText picks the plain-text body, converting HTML when that is all
// the email carries.
func (f *SlackFormatter) bodyText(email *models.Email) string {
	if text := strings.TrimSpace(email.Body.Text); text != "" {
		return text
	}
	if email.Body.HTML != "" {
		text, err := f.html.Parse(email.Body.HTML)
		if err == nil && text != "" {
			return text
		}
		if fallback := strings.TrimSpace(email.Body.HTML); fallback != "" {
			return fallback
		}
	}
	return noBodyFallback
}

func headerText(subject string) string {
	if runeLen(subject) > maxSubjectLen {
		subject = truncateRunes(subject, maxSubjectLen-3) + "..."
	}
	return headerPrefix + subject
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
