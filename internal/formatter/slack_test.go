package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/slackmail/pkg/models"
)

func testEmail(subject, text string) *models.Email {
	return &models.Email{
		MessageID: "<1234.abcd@mail.example.com>",
		From:      models.EmailAddress{Name: "Alice", Address: "alice@example.com"},
		To:        []models.EmailAddress{{Address: "team@corp.example.com"}},
		Subject:   subject,
		Body:      models.EmailBody{Text: text},
	}
}

func headerBlock(t *testing.T, msg *FormattedMessage) *slack.HeaderBlock {
	t.Helper()
	require.NotEmpty(t, msg.Blocks)
	header, ok := msg.Blocks[0].(*slack.HeaderBlock)
	require.True(t, ok, "first block should be a header")
	return header
}

func bodyBlock(t *testing.T, msg *FormattedMessage) *slack.SectionBlock {
	t.Helper()
	var sections []*slack.SectionBlock
	for _, b := range msg.Blocks {
		if s, ok := b.(*slack.SectionBlock); ok && s.Text != nil {
			sections = append(sections, s)
		}
	}
	require.NotEmpty(t, sections, "message should have a body section")
	return sections[len(sections)-1]
}

func hasContextText(msg *FormattedMessage, want string) bool {
	for _, b := range msg.Blocks {
		ctx, ok := b.(*slack.ContextBlock)
		if !ok {
			continue
		}
		for _, el := range ctx.ContextElements.Elements {
			if text, ok := el.(*slack.TextBlockObject); ok && text.Text == want {
				return true
			}
		}
	}
	return false
}

func TestFormat_Basic(t *testing.T) {
	f := NewSlackFormatter()
	email := testEmail("Quarterly report", "Numbers attached below.")
	email.Date = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	msg := f.Format(email)

	assert.Equal(t, "📧 Quarterly report from Alice <alice@example.com>", msg.PreviewText)
	assert.Equal(t, "📧 Quarterly report", headerBlock(t, msg).Text.Text)
	assert.Equal(t, "Numbers attached below.", bodyBlock(t, msg).Text.Text)
	assert.Nil(t, msg.FileAttachment)
}

func TestFormat_SubjectBoundary(t *testing.T) {
	f := NewSlackFormatter()

	tests := []struct {
		name       string
		subjectLen int
		truncated  bool
	}{
		{"exactly at limit", 140, false},
		{"one over limit", 141, true},
		{"well over limit", 300, true},
		{"short", 12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := strings.Repeat("s", tt.subjectLen)
			msg := f.Format(testEmail(subject, "body"))

			header := headerBlock(t, msg).Text.Text
			if tt.truncated {
				assert.Equal(t, "📧 "+strings.Repeat("s", 137)+"...", header)
			} else {
				assert.Equal(t, "📧 "+subject, header)
			}
			// Preview is never truncated
			assert.Contains(t, msg.PreviewText, subject)
		})
	}
}

func TestFormat_SubjectTruncationCountsRunes(t *testing.T) {
	f := NewSlackFormatter()
	subject := strings.Repeat("日", 141)

	msg := f.Format(testEmail(subject, "body"))

	assert.Equal(t, "📧 "+strings.Repeat("日", 137)+"...", headerBlock(t, msg).Text.Text)
}

func TestFormat_BodyBoundary(t *testing.T) {
	f := NewSlackFormatter()

	tests := []struct {
		name     string
		bodyLen  int
		attached bool
	}{
		{"exactly at limit", 2800, false},
		{"one over limit", 2801, true},
		{"far over limit", 4200, true},
		{"short", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Repeat("b", tt.bodyLen)
			msg := f.Format(testEmail("subject", body))

			if !tt.attached {
				assert.Equal(t, body, bodyBlock(t, msg).Text.Text)
				assert.Nil(t, msg.FileAttachment)
				assert.False(t, hasContextText(msg, "📎 _Full email body attached as file._"))
				return
			}

			require.NotNil(t, msg.FileAttachment)
			assert.Equal(t, body, msg.FileAttachment.Content)
			assert.Equal(t, "email-body-1234.abcd@mail.example.com.txt", msg.FileAttachment.Filename)
			assert.Equal(t, strings.Repeat("b", 2800), bodyBlock(t, msg).Text.Text)
			assert.True(t, hasContextText(msg, "📎 _Full email body attached as file._"))
		})
	}
}

func TestFormat_NoBody(t *testing.T) {
	f := NewSlackFormatter()

	msg := f.Format(testEmail("subject", "   "))

	assert.Equal(t, "(no body)", bodyBlock(t, msg).Text.Text)
}

func TestFormat_HTMLOnlyBody(t *testing.T) {
	f := NewSlackFormatter()
	email := testEmail("subject", "")
	email.Body.HTML = "<html><body><p>Hello <b>there</b></p></body></html>"

	msg := f.Format(email)

	assert.Contains(t, bodyBlock(t, msg).Text.Text, "Hello there")
}

func TestFormat_CcField(t *testing.T) {
	f := NewSlackFormatter()
	email := testEmail("subject", "body")
	email.Cc = []models.EmailAddress{{Address: "watcher@example.com"}}

	msg := f.Format(email)

	fields, ok := msg.Blocks[1].(*slack.SectionBlock)
	require.True(t, ok)
	require.Len(t, fields.Fields, 3)
	assert.Contains(t, fields.Fields[2].Text, "watcher@example.com")
}

func TestFormat_Deterministic(t *testing.T) {
	f := NewSlackFormatter()
	email := testEmail("subject", strings.Repeat("x", 3000))

	first := f.Format(email)
	second := f.Format(email)

	assert.Equal(t, first.PreviewText, second.PreviewText)
	assert.Equal(t, first.FileAttachment, second.FileAttachment)
	assert.Equal(t, len(first.Blocks), len(second.Blocks))
}

func TestWithUploadFailureNote(t *testing.T) {
	f := NewSlackFormatter()
	msg := f.Format(testEmail("subject", "body"))

	annotated := WithUploadFailureNote(msg)

	assert.Len(t, annotated.Blocks, len(msg.Blocks)+1)
	assert.True(t, hasContextText(annotated, "⚠️ The full email body could not be uploaded."))
	// Original untouched
	assert.False(t, hasContextText(msg, "⚠️ The full email body could not be uploaded."))
}

func TestFormatAddressList(t *testing.T) {
	addrs := []models.EmailAddress{
		{Name: "Alice", Address: "alice@example.com"},
		{Address: "bob@example.com"},
	}

	assert.Equal(t, "Alice <alice@example.com>, bob@example.com", FormatAddressList(addrs))
	assert.Equal(t, "", FormatAddressList(nil))
}
