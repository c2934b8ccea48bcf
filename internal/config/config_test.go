package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SLACK_SIGNING_SECRET", "sig-secret")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "slackmail-config", cfg.ConfigTable)
	assert.Equal(t, "./data/slackmail.db", cfg.DatabasePath)
	assert.Equal(t, 2, cfg.DeliveryMaxRetries)
	assert.Equal(t, time.Second, cfg.DeliveryInitialBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DELIVERY_MAX_RETRIES", "5")
	t.Setenv("DELIVERY_INITIAL_BACKOFF", "250ms")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.DeliveryMaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.DeliveryInitialBackoff)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_RequiresSigningSecret(t *testing.T) {
	t.Setenv("SLACK_SIGNING_SECRET", "")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresTokenOrSecretArn(t *testing.T) {
	t.Setenv("SLACK_SIGNING_SECRET", "sig-secret")
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_BOT_TOKEN_SECRET_ARN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_BOT_TOKEN")
}

func TestLoad_SecretArnAloneIsEnough(t *testing.T) {
	t.Setenv("SLACK_SIGNING_SECRET", "sig-secret")
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_BOT_TOKEN_SECRET_ARN", "arn:aws:secretsmanager:us-east-1:1:secret:bot")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.SlackBotToken)
}

func TestLoad_InboundQueueNeedsBucket(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INBOUND_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/1/inbound")
	t.Setenv("RAW_MAIL_BUCKET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAW_MAIL_BUCKET")
}

func TestLoad_RejectsNegativeRetries(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DELIVERY_MAX_RETRIES", "-1")

	_, err := Load()
	assert.Error(t, err)
}
