package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/slackmail/pkg/models"
)

func validRequest() *models.SendRequest {
	return &models.SendRequest{
		From:     models.EmailAddress{Address: "noreply@corp.example.com"},
		To:       []models.EmailAddress{{Address: "client@example.com"}},
		Subject:  "Hello",
		BodyText: "Body text",
	}
}

func TestValidateSendRequest_Valid(t *testing.T) {
	require.NoError(t, ValidateSendRequest(validRequest()))
}

func TestValidateSendRequest_HTMLOnlyBodyIsValid(t *testing.T) {
	req := validRequest()
	req.BodyText = ""
	req.BodyHTML = "<p>Body</p>"
	require.NoError(t, ValidateSendRequest(req))
}

func TestValidateSendRequest_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *models.SendRequest)
		wantErr string
	}{
		{
			name:    "missing from",
			mutate:  func(req *models.SendRequest) { req.From = models.EmailAddress{} },
			wantErr: "from address is required",
		},
		{
			name:    "no recipients",
			mutate:  func(req *models.SendRequest) { req.To = nil },
			wantErr: "at least one recipient is required",
		},
		{
			name: "empty to entry",
			mutate: func(req *models.SendRequest) {
				req.To = append(req.To, models.EmailAddress{Name: "Ghost"})
			},
			wantErr: "recipient address is empty",
		},
		{
			name: "empty cc entry",
			mutate: func(req *models.SendRequest) {
				req.Cc = []models.EmailAddress{{}}
			},
			wantErr: "recipient address is empty",
		},
		{
			name: "empty bcc entry",
			mutate: func(req *models.SendRequest) {
				req.Bcc = []models.EmailAddress{{}}
			},
			wantErr: "recipient address is empty",
		},
		{
			name:    "blank subject",
			mutate:  func(req *models.SendRequest) { req.Subject = "   " },
			wantErr: "subject is required",
		},
		{
			name: "no body at all",
			mutate: func(req *models.SendRequest) {
				req.BodyText = ""
				req.BodyHTML = ""
			},
			wantErr: "email body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := ValidateSendRequest(req)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateSendRequest_ReportsFirstViolation(t *testing.T) {
	// Both from and subject are bad; from wins.
	req := validRequest()
	req.From = models.EmailAddress{}
	req.Subject = ""

	assert.EqualError(t, ValidateSendRequest(req), "from address is required")
}
