package slackbot

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mixelka/slackmail/pkg/models"
)

// ConfigAdmin writes tenant provisioning records.
type ConfigAdmin interface {
	PutTenant(ctx context.Context, cfg *models.TenantConfig) error
	PutDomain(ctx context.Context, d *models.Domain) error
	PutChannelConfig(ctx context.Context, cc *models.ChannelConfig) error
}

// CreateTenant registers a workspace.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var cfg models.TenantConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if cfg.TeamID == "" {
		http.Error(w, "team_id is required", http.StatusBadRequest)
		return
	}
	if cfg.Status == "" {
		cfg.Status = models.TenantStatusActive
	}
	if cfg.InstalledAt.IsZero() {
		cfg.InstalledAt = time.Now().UTC()
	}

	if err := h.admin.PutTenant(r.Context(), &cfg); err != nil {
		h.logger.Error("failed to store tenant", "team_id", cfg.TeamID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("tenant provisioned", "team_id", cfg.TeamID)
	writeJSON(w, http.StatusCreated, &cfg)
}

// CreateDomain registers a sending domain for a workspace.
func (h *Handlers) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var d models.Domain
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if d.TeamID == "" || d.Domain == "" {
		http.Error(w, "team_id and domain are required", http.StatusBadRequest)
		return
	}

	d.Domain = strings.ToLower(d.Domain)
	if d.DomainID == "" {
		d.DomainID = uuid.NewString()
	}
	if d.VerificationStatus == "" {
		d.VerificationStatus = models.DomainStatusPending
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	if err := h.admin.PutDomain(r.Context(), &d); err != nil {
		h.logger.Error("failed to store domain", "domain", d.Domain, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("domain provisioned", "team_id", d.TeamID, "domain", d.Domain)
	writeJSON(w, http.StatusCreated, &d)
}

// CreateChannelConfig binds a Slack channel to a sending domain.
func (h *Handlers) CreateChannelConfig(w http.ResponseWriter, r *http.Request) {
	var cc models.ChannelConfig
	if err := json.NewDecoder(r.Body).Decode(&cc); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if cc.TeamID == "" || cc.ChannelID == "" || cc.DomainID == "" {
		http.Error(w, "team_id, channel_id and domain_id are required", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	if cc.CreatedAt.IsZero() {
		cc.CreatedAt = now
	}
	cc.UpdatedAt = now

	if err := h.admin.PutChannelConfig(r.Context(), &cc); err != nil {
		h.logger.Error("failed to store channel config", "channel_id", cc.ChannelID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, &cc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
