package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Resolver reads bot credentials out of Secrets Manager. Secrets are
// stored either as a raw token string or as JSON with a "bot_token"
// field.
type Resolver struct {
	client *secretsmanager.Client
}

// NewResolver creates a secrets resolver
func NewResolver(cfg aws.Config) *Resolver {
	return &Resolver{client: secretsmanager.NewFromConfig(cfg)}
}

// BotToken fetches and decodes the bot token stored at arn.
func (r *Resolver) BotToken(ctx context.Context, arn string) (string, error) {
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch secret %s: %w", arn, err)
	}

	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %s has no string value", arn)
	}

	var payload struct {
		BotToken string `json:"bot_token"`
	}
	if err := json.Unmarshal([]byte(value), &payload); err == nil && payload.BotToken != "" {
		return payload.BotToken, nil
	}

	return strings.TrimSpace(value), nil
}
