package sender

import (
	"fmt"
	"strings"

	"github.com/mixelka/slackmail/pkg/models"
)

// ValidateSendRequest checks an outbound send request and reports the
// first violation found. It has no side effects.
func ValidateSendRequest(req *models.SendRequest) error {
	if req.From.Address == "" {
		return fmt.Errorf("from address is required")
	}

	if len(req.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	for _, list := range [][]models.EmailAddress{req.To, req.Cc, req.Bcc} {
		for _, addr := range list {
			if addr.Address == "" {
				return fmt.Errorf("recipient address is empty")
			}
		}
	}

	if strings.TrimSpace(req.Subject) == "" {
		return fmt.Errorf("subject is required")
	}

	if req.BodyText == "" && req.BodyHTML == "" {
		return fmt.Errorf("email body is required")
	}

	return nil
}
