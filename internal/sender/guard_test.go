package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/slackmail/pkg/models"
)

func verifiedDomain(name string) *models.Domain {
	return &models.Domain{
		DomainID:           "dom-1",
		Domain:             name,
		VerificationStatus: models.DomainStatusVerified,
	}
}

func TestAssertSendable_Allowed(t *testing.T) {
	require.NoError(t, AssertSendable("noreply@corp.example.com", verifiedDomain("corp.example.com")))
}

func TestAssertSendable_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		domain  *models.Domain
		wantErr string
	}{
		{
			name:    "no at sign",
			sender:  "noreply",
			domain:  verifiedDomain("corp.example.com"),
			wantErr: `sender address "noreply" has no domain part`,
		},
		{
			name:    "trailing at sign",
			sender:  "noreply@",
			domain:  verifiedDomain("corp.example.com"),
			wantErr: `sender address "noreply@" has no domain part`,
		},
		{
			name:    "wrong domain",
			sender:  "noreply@other.example.com",
			domain:  verifiedDomain("corp.example.com"),
			wantErr: `sender domain "other.example.com" does not match verified domain "corp.example.com"`,
		},
		{
			name:    "case differs",
			sender:  "noreply@Corp.Example.com",
			domain:  verifiedDomain("corp.example.com"),
			wantErr: `sender domain "Corp.Example.com" does not match verified domain "corp.example.com"`,
		},
		{
			name:   "domain pending verification",
			sender: "noreply@corp.example.com",
			domain: &models.Domain{
				Domain:             "corp.example.com",
				VerificationStatus: models.DomainStatusPending,
			},
			wantErr: "domain corp.example.com is not verified (status: pending)",
		},
		{
			name:   "domain failed verification",
			sender: "noreply@corp.example.com",
			domain: &models.Domain{
				Domain:             "corp.example.com",
				VerificationStatus: models.DomainStatusFailed,
			},
			wantErr: "domain corp.example.com is not verified (status: failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertSendable(tt.sender, tt.domain)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestAssertSendable_MultipleAtSignsUseLast(t *testing.T) {
	// Quoted local parts can contain @; only the last one separates the domain.
	require.NoError(t, AssertSendable(`"weird@local"@corp.example.com`, verifiedDomain("corp.example.com")))
}
