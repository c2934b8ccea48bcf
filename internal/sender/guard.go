package sender

import (
	"fmt"
	"strings"

	"github.com/mixelka/slackmail/pkg/models"
)

// AssertSendable enforces that the sender address belongs to the resolved
// verified domain. The comparison is case-sensitive: sending "as" any
// address outside the exact verified domain is rejected.
func AssertSendable(senderAddress string, domain *models.Domain) error {
	at := strings.LastIndex(senderAddress, "@")
	if at < 0 || at == len(senderAddress)-1 {
		return fmt.Errorf("sender address %q has no domain part", senderAddress)
	}
	senderDomain := senderAddress[at+1:]

	if domain.VerificationStatus != models.DomainStatusVerified {
		return fmt.Errorf("domain %s is not verified (status: %s)", domain.Domain, domain.VerificationStatus)
	}

	if senderDomain != domain.Domain {
		return fmt.Errorf("sender domain %q does not match verified domain %q", senderDomain, domain.Domain)
	}

	return nil
}
