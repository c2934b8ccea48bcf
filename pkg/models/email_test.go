package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailAddress_String(t *testing.T) {
	tests := []struct {
		name string
		addr EmailAddress
		want string
	}{
		{"bare address", EmailAddress{Address: "alice@example.com"}, "alice@example.com"},
		{"with name", EmailAddress{Name: "Alice", Address: "alice@example.com"}, "Alice <alice@example.com>"},
		{"empty", EmailAddress{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.String())
		})
	}
}

func TestNewMessageID(t *testing.T) {
	id := NewMessageID("corp.example.com")

	assert.Regexp(t, `^<\d+\.[0-9a-f-]+@corp\.example\.com>$`, id)
	assert.NotEqual(t, id, NewMessageID("corp.example.com"))
}
