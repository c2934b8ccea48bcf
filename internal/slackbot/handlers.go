package slackbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/mixelka/slackmail/internal/database"
	"github.com/mixelka/slackmail/internal/delivery"
	"github.com/mixelka/slackmail/internal/formatter"
	"github.com/mixelka/slackmail/internal/parser"
	"github.com/mixelka/slackmail/internal/tenant"
	"github.com/mixelka/slackmail/pkg/models"
)

var mentionPrefixRegex = regexp.MustCompile(`^\s*<@[A-Z0-9]+>\s*`)

// ChatAPI is the slice of the Slack client the handlers use.
type ChatAPI interface {
	PostMessage(ctx context.Context, channelID string, msg *formatter.FormattedMessage) (delivery.MessageRef, error)
	UpdateMessage(ctx context.Context, ref delivery.MessageRef, msg *formatter.FormattedMessage) error
	MessageText(ctx context.Context, channelID, timestamp string) (string, error)
}

// DraftStore persists parsed drafts between the confirmation message and
// the button click.
type DraftStore interface {
	CreateDraft(ctx context.Context, draft *models.SendDraft) error
	GetDraftByID(ctx context.Context, id int64) (*models.SendDraft, error)
	DeleteDraft(ctx context.Context, id int64) error
}

// DeadLetterLister reads recently dead-lettered inbound emails.
type DeadLetterLister interface {
	ListRecentFailedEmails(ctx context.Context, limit int) ([]*database.FailedEmail, error)
}

// EmailSender runs the outbound send pipeline.
type EmailSender interface {
	Send(ctx context.Context, req *models.SendRequest, sctx *models.SendContext) (string, error)
}

// DomainResolver resolves a workspace's tenant and sending domain.
type DomainResolver interface {
	Resolve(ctx context.Context, teamID, selectedDomainID string) (*models.TenantConfig, *models.Domain, error)
}

// ChannelConfigStore reads per-channel domain bindings.
type ChannelConfigStore interface {
	GetChannelConfig(ctx context.Context, teamID, channelID string) (*models.ChannelConfig, error)
}

// Handlers implements the bot's conversation flow: template help,
// permalink drafts, and the Send/Cancel confirmation actions.
type Handlers struct {
	chat        ChatAPI
	drafts      DraftStore
	deadLetters DeadLetterLister
	pipeline    EmailSender
	resolver    DomainResolver
	channels    ChannelConfigStore
	admin       ConfigAdmin
	logger      *slog.Logger
}

// NewHandlers creates the bot handlers
func NewHandlers(chat ChatAPI, drafts DraftStore, deadLetters DeadLetterLister, pipeline EmailSender, resolver DomainResolver, channels ChannelConfigStore, admin ConfigAdmin, logger *slog.Logger) *Handlers {
	return &Handlers{
		chat:        chat,
		drafts:      drafts,
		deadLetters: deadLetters,
		pipeline:    pipeline,
		resolver:    resolver,
		channels:    channels,
		admin:       admin,
		logger:      logger.With("component", "handlers"),
	}
}

// HandleMention reacts to an @mention of the bot.
func (h *Handlers) HandleMention(ctx context.Context, teamID string, mention *slackevents.AppMentionEvent) {
	text := strings.TrimSpace(mentionPrefixRegex.ReplaceAllString(mention.Text, ""))

	switch {
	case text == "" || strings.Contains(strings.ToLower(text), "template"):
		h.postTemplate(ctx, mention.Channel)
	case parser.IsPermalink(firstToken(text)):
		h.handlePermalink(ctx, teamID, mention, firstToken(text))
	default:
		h.post(ctx, mention.Channel,
			"Mention me with `template` to get the email template, or with a link to a filled-in template message to send it.")
	}
}

func (h *Handlers) postTemplate(ctx context.Context, channelID string) {
	h.post(ctx, channelID,
		"Copy this template into a new message, fill it in, then mention me with a link to that message:\n```\n"+
			parser.EmailTemplate+"\n```")
}

func (h *Handlers) handlePermalink(ctx context.Context, teamID string, mention *slackevents.AppMentionEvent, rawLink string) {
	link, err := parser.ParsePermalink(rawLink)
	if err != nil {
		h.post(ctx, mention.Channel, "❌ That doesn't look like a message link: "+err.Error())
		return
	}

	messageText, err := h.chat.MessageText(ctx, link.ChannelID, link.Timestamp)
	if err != nil {
		h.logger.Error("failed to fetch linked message", "channel", link.ChannelID, "error", err)
		h.post(ctx, mention.Channel, "❌ I couldn't read the linked message. Am I in that channel?")
		return
	}

	req, err := parser.ParseTemplate(messageText)
	if err != nil {
		h.post(ctx, mention.Channel, "❌ Failed to parse the template: "+err.Error())
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		h.logger.Error("failed to marshal draft", "error", err)
		return
	}

	draft := &models.SendDraft{
		TeamID:    teamID,
		ChannelID: mention.Channel,
		UserID:    mention.User,
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.drafts.CreateDraft(ctx, draft); err != nil {
		h.logger.Error("failed to store draft", "error", err)
		h.post(ctx, mention.Channel, "❌ Something went wrong storing the draft, please try again.")
		return
	}

	if _, err := h.chat.PostMessage(ctx, mention.Channel, formatter.BuildConfirmation(req, draft.ID)); err != nil {
		h.logger.Error("failed to post confirmation", "error", err)
	}
}

// HandleBlockActions reacts to a Send or Cancel button click.
func (h *Handlers) HandleBlockActions(ctx context.Context, cb *slack.InteractionCallback) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		return
	}
	action := cb.ActionCallback.BlockActions[0]

	ref := delivery.MessageRef{Channel: cb.Channel.ID, Timestamp: cb.Message.Timestamp}

	draftID, err := strconv.ParseInt(action.Value, 10, 64)
	if err != nil {
		h.logger.Error("interaction carries invalid draft id", "value", action.Value)
		return
	}

	switch action.ActionID {
	case formatter.ActionCancelEmail:
		if err := h.drafts.DeleteDraft(ctx, draftID); err != nil {
			h.logger.Error("failed to delete draft", "draft_id", draftID, "error", err)
		}
		h.update(ctx, ref, "Send cancelled.")

	case formatter.ActionSendEmail:
		h.handleSend(ctx, cb, ref, draftID)
	}
}

func (h *Handlers) handleSend(ctx context.Context, cb *slack.InteractionCallback, ref delivery.MessageRef, draftID int64) {
	draft, err := h.drafts.GetDraftByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.update(ctx, ref, "❌ This draft has expired, please start over.")
			return
		}
		h.logger.Error("failed to load draft", "draft_id", draftID, "error", err)
		h.update(ctx, ref, "❌ Something went wrong, please try again.")
		return
	}

	var req models.SendRequest
	if err := json.Unmarshal([]byte(draft.Payload), &req); err != nil {
		h.logger.Error("failed to decode draft payload", "draft_id", draftID, "error", err)
		h.update(ctx, ref, "❌ This draft is corrupted, please start over.")
		return
	}

	teamID := cb.Team.ID
	if teamID == "" {
		teamID = draft.TeamID
	}

	sctx := &models.SendContext{
		TeamID:    teamID,
		ChannelID: cb.Channel.ID,
		UserID:    cb.User.ID,
	}

	// A channel may be pinned to one of the workspace's domains.
	if cc, err := h.channels.GetChannelConfig(ctx, teamID, cb.Channel.ID); err == nil && cc.Enabled {
		sctx.SelectedDomainID = cc.DomainID
	}

	// The template's From line is optional; the domain's default sender
	// fills the gap before validation runs.
	if req.From.Address == "" {
		_, domain, err := h.resolver.Resolve(ctx, teamID, sctx.SelectedDomainID)
		if err != nil {
			h.update(ctx, ref, "❌ "+sendFailureText(err))
			return
		}
		if domain.DefaultSender == "" {
			h.update(ctx, ref, "❌ No From address given and domain "+domain.Domain+" has no default sender.")
			return
		}
		req.From = models.EmailAddress{Address: domain.DefaultSender}
	}

	messageID, err := h.pipeline.Send(ctx, &req, sctx)
	if err != nil {
		h.logger.Error("failed to send email", "draft_id", draftID, "error", err)
		h.update(ctx, ref, "❌ "+sendFailureText(err))
		return
	}

	if err := h.drafts.DeleteDraft(ctx, draftID); err != nil {
		h.logger.Error("failed to delete sent draft", "draft_id", draftID, "error", err)
	}

	h.update(ctx, ref, fmt.Sprintf("✅ Email sent to %s.\n_Message id: `%s`_",
		formatter.FormatAddressList(req.To), messageID))
}

// sendFailureText maps pipeline errors onto user-facing text.
func sendFailureText(err error) string {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		return "This workspace isn't set up yet. Install the app first."
	case errors.Is(err, tenant.ErrNoDomains):
		return "No sending domain is configured for this workspace."
	case errors.Is(err, tenant.ErrDomainNotFound):
		return "The domain bound to this channel no longer exists."
	default:
		return "Failed to send: " + err.Error()
	}
}

// ListDeadLetters exposes the dead-letter store to the ops endpoint.
func (h *Handlers) ListDeadLetters(ctx context.Context, limit int) ([]*database.FailedEmail, error) {
	return h.deadLetters.ListRecentFailedEmails(ctx, limit)
}

func (h *Handlers) post(ctx context.Context, channelID, text string) {
	if _, err := h.chat.PostMessage(ctx, channelID, formatter.PlainMessage(text)); err != nil {
		h.logger.Error("failed to post message", "channel", channelID, "error", err)
	}
}

func (h *Handlers) update(ctx context.Context, ref delivery.MessageRef, text string) {
	if err := h.chat.UpdateMessage(ctx, ref, formatter.PlainMessage(text)); err != nil {
		h.logger.Error("failed to update message", "channel", ref.Channel, "error", err)
	}
}

func firstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
