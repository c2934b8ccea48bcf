package models

import "time"

// Tenant lifecycle statuses. Tenants are never hard-deleted in normal
// operation, only transitioned.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusDeleted   = "deleted"
)

// Domain verification statuses, driven by an external verification process.
const (
	DomainStatusPending  = "pending"
	DomainStatusVerified = "verified"
	DomainStatusFailed   = "failed"
)

// TenantConfig is one Slack workspace's configuration, created at install
// time and mutated on reinstall or token rotation.
type TenantConfig struct {
	TeamID            string    `json:"team_id" dynamodbav:"TeamID"`
	TeamName          string    `json:"team_name" dynamodbav:"TeamName"`
	BotUserID         string    `json:"bot_user_id" dynamodbav:"BotUserID"`
	BotTokenSecretArn string    `json:"bot_token_secret_arn" dynamodbav:"BotTokenSecretArn"`
	Plan              string    `json:"plan" dynamodbav:"Plan"`
	Status            string    `json:"status" dynamodbav:"Status"`
	InstalledAt       time.Time `json:"installed_at" dynamodbav:"InstalledAt"`
	InstalledBy       string    `json:"installed_by" dynamodbav:"InstalledBy"`
	StripeCustomerID  string    `json:"stripe_customer_id,omitempty" dynamodbav:"StripeCustomerID,omitempty"`
}

// Domain is an email-sending domain owned by a tenant. The status fields
// transition pending→verified|failed independently of each other.
type Domain struct {
	DomainID           string    `json:"domain_id" dynamodbav:"DomainID"`
	TeamID             string    `json:"team_id" dynamodbav:"TeamID"`
	Domain             string    `json:"domain" dynamodbav:"Domain"`
	SESIdentityArn     string    `json:"ses_identity_arn,omitempty" dynamodbav:"SESIdentityArn,omitempty"`
	VerificationStatus string    `json:"verification_status" dynamodbav:"VerificationStatus"`
	DKIMStatus         string    `json:"dkim_status" dynamodbav:"DKIMStatus"`
	MailFromStatus     string    `json:"mail_from_status" dynamodbav:"MailFromStatus"`
	DefaultSender      string    `json:"default_sender" dynamodbav:"DefaultSender"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"CreatedAt"`
}

// DomainRef points from a domain name back to its owning tenant record.
type DomainRef struct {
	TeamID   string `json:"team_id" dynamodbav:"TeamID"`
	DomainID string `json:"domain_id" dynamodbav:"DomainID"`
}

// ChannelConfig maps a Slack channel to its default sending domain.
type ChannelConfig struct {
	TeamID    string    `json:"team_id" dynamodbav:"TeamID"`
	ChannelID string    `json:"channel_id" dynamodbav:"ChannelID"`
	DomainID  string    `json:"domain_id" dynamodbav:"DomainID"`
	Enabled   bool      `json:"enabled" dynamodbav:"Enabled"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"UpdatedAt"`
}
