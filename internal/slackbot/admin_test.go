package slackbot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/slackmail/pkg/models"
)

func TestCreateTenant(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants",
		strings.NewReader(`{"team_id":"T1","team_name":"Acme"}`))
	rec := httptest.NewRecorder()

	f.handlers.CreateTenant(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.admin.tenants, 1)
	stored := f.admin.tenants[0]
	assert.Equal(t, "T1", stored.TeamID)
	assert.Equal(t, models.TenantStatusActive, stored.Status)
	assert.False(t, stored.InstalledAt.IsZero())
}

func TestCreateTenant_MissingTeamID(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	f.handlers.CreateTenant(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.admin.tenants)
}

func TestCreateDomain(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/admin/domains",
		strings.NewReader(`{"team_id":"T1","domain":"Corp.Example.COM"}`))
	rec := httptest.NewRecorder()

	f.handlers.CreateDomain(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.admin.domains, 1)
	stored := f.admin.domains[0]
	assert.Equal(t, "corp.example.com", stored.Domain)
	assert.NotEmpty(t, stored.DomainID)
	assert.Equal(t, models.DomainStatusPending, stored.VerificationStatus)

	var body models.Domain
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, stored.DomainID, body.DomainID)
}

func TestCreateChannelConfig(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/admin/channels",
		strings.NewReader(`{"team_id":"T1","channel_id":"C1","domain_id":"dom-1","enabled":true}`))
	rec := httptest.NewRecorder()

	f.handlers.CreateChannelConfig(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.admin.channels, 1)
	assert.True(t, f.admin.channels[0].Enabled)
	assert.False(t, f.admin.channels[0].UpdatedAt.IsZero())
}

func TestCreateChannelConfig_MissingFields(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/admin/channels",
		strings.NewReader(`{"team_id":"T1"}`))
	rec := httptest.NewRecorder()

	f.handlers.CreateChannelConfig(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.admin.channels)
}
