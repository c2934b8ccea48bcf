package slackbot

import (
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/slackmail/internal/delivery"
)

func TestWrapPlatformError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "bare api code",
			err:      errors.New("channel_not_found"),
			wantCode: "channel_not_found",
		},
		{
			name:     "error response envelope",
			err:      slack.SlackErrorResponse{Err: "invalid_blocks"},
			wantCode: "invalid_blocks",
		},
		{
			name:     "rate limited",
			err:      &slack.RateLimitedError{RetryAfter: 30 * time.Second},
			wantCode: "rate_limited",
		},
		{
			name:     "transport error",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: delivery.CodeUnknownPlatformError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapPlatformError(tt.err)

			var perr *delivery.PlatformError
			require.ErrorAs(t, wrapped, &perr)
			assert.Equal(t, tt.wantCode, perr.Code)
			assert.Equal(t, tt.err, perr.Err)
		})
	}
}

func TestWrapPlatformError_Nil(t *testing.T) {
	assert.NoError(t, wrapPlatformError(nil))
}
