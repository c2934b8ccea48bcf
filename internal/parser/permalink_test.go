package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermalink(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantChannel string
		wantTS      string
	}{
		{
			name:        "plain link",
			raw:         "https://acme.slack.com/archives/C01234ABCD/p1234567890123456",
			wantChannel: "C01234ABCD",
			wantTS:      "1234567890.123456",
		},
		{
			name:        "trailing slash",
			raw:         "https://acme.slack.com/archives/C01234ABCD/p1234567890123456/",
			wantChannel: "C01234ABCD",
			wantTS:      "1234567890.123456",
		},
		{
			name:        "slack angle wrapping",
			raw:         "<https://acme.slack.com/archives/C01234ABCD/p1234567890123456>",
			wantChannel: "C01234ABCD",
			wantTS:      "1234567890.123456",
		},
		{
			name:        "angle wrapping with label",
			raw:         "<https://acme.slack.com/archives/C01234ABCD/p1234567890123456|this message>",
			wantChannel: "C01234ABCD",
			wantTS:      "1234567890.123456",
		},
		{
			name:        "hyphenated workspace",
			raw:         "https://acme-corp.slack.com/archives/C9ZZZZZZ/p1700000000000100",
			wantChannel: "C9ZZZZZZ",
			wantTS:      "1700000000.000100",
		},
		{
			name:        "exactly ten digits",
			raw:         "https://acme.slack.com/archives/C01234ABCD/p1234567890",
			wantChannel: "C01234ABCD",
			wantTS:      "1234567890.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ParsePermalink(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChannel, link.ChannelID)
			assert.Equal(t, tt.wantTS, link.Timestamp)
		})
	}
}

func TestParsePermalink_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not a url", "hello world"},
		{"http scheme", "http://acme.slack.com/archives/C01234ABCD/p1234567890123456"},
		{"wrong host", "https://acme.example.com/archives/C01234ABCD/p1234567890123456"},
		{"missing p prefix", "https://acme.slack.com/archives/C01234ABCD/1234567890123456"},
		{"too few digits", "https://acme.slack.com/archives/C01234ABCD/p123"},
		{"lowercase channel", "https://acme.slack.com/archives/c01234abcd/p1234567890123456"},
		{"trailing garbage", "https://acme.slack.com/archives/C01234ABCD/p1234567890123456?thread_ts=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePermalink(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestIsPermalink(t *testing.T) {
	assert.True(t, IsPermalink("https://acme.slack.com/archives/C01234ABCD/p1234567890123456"))
	assert.True(t, IsPermalink("<https://acme.slack.com/archives/C01234ABCD/p1234567890123456|link>"))
	assert.False(t, IsPermalink("template"))
	assert.False(t, IsPermalink("https://example.com/"))
}
