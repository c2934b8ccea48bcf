package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Slack
	SlackBotToken          string `env:"SLACK_BOT_TOKEN"`
	SlackBotTokenSecretArn string `env:"SLACK_BOT_TOKEN_SECRET_ARN"`
	SlackSigningSecret     string `env:"SLACK_SIGNING_SECRET,required,notEmpty"`
	HTTPAddr               string `env:"HTTP_ADDR" envDefault:":8080"`

	// AWS
	AWSRegion     string `env:"AWS_REGION" envDefault:"us-east-1"`
	ConfigTable   string `env:"CONFIG_TABLE" envDefault:"slackmail-config"`
	RawMailBucket string `env:"RAW_MAIL_BUCKET"`

	// Inbound mail queue (SES receipt notifications). Empty disables the
	// consumer; the HTTP surface still runs.
	InboundQueueURL string `env:"INBOUND_QUEUE_URL"`

	// Local database (drafts, dead letters)
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/slackmail.db"`

	// Delivery
	DeliveryMaxRetries     int           `env:"DELIVERY_MAX_RETRIES" envDefault:"2"`
	DeliveryInitialBackoff time.Duration `env:"DELIVERY_INITIAL_BACKOFF" envDefault:"1s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SlackBotToken == "" && cfg.SlackBotTokenSecretArn == "" {
		return nil, fmt.Errorf("either SLACK_BOT_TOKEN or SLACK_BOT_TOKEN_SECRET_ARN must be set")
	}

	if cfg.InboundQueueURL != "" && cfg.RawMailBucket == "" {
		return nil, fmt.Errorf("RAW_MAIL_BUCKET must be set when INBOUND_QUEUE_URL is configured")
	}

	if cfg.DeliveryMaxRetries < 0 {
		return nil, fmt.Errorf("DELIVERY_MAX_RETRIES must not be negative, got %d", cfg.DeliveryMaxRetries)
	}

	return cfg, nil
}
