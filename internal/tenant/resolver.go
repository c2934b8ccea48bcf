package tenant

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mixelka/slackmail/pkg/models"
)

// ErrNotFound is how Store implementations report a missing record.
var ErrNotFound = errors.New("configuration record not found")

var (
	ErrTenantNotFound = errors.New("tenant configuration not found")
	ErrNoDomains      = errors.New("no domains configured")
	ErrDomainNotFound = errors.New("domain not found")
)

// Store is the configuration-store surface the resolver reads.
type Store interface {
	GetTenant(ctx context.Context, teamID string) (*models.TenantConfig, error)
	ListDomains(ctx context.Context, teamID string) ([]models.Domain, error)
}

// Resolver resolves a workspace's tenant configuration and a sending
// domain from the configuration store.
type Resolver struct {
	store Store
}

// NewResolver creates a tenant resolver
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve fetches the tenant for teamID and picks a sending domain:
// the explicitly selected one, or the oldest configured domain. Domains
// are sorted by creation time (then id) so the default pick is
// deterministic regardless of store ordering.
func (r *Resolver) Resolve(ctx context.Context, teamID, selectedDomainID string) (*models.TenantConfig, *models.Domain, error) {
	cfg, err := r.store.GetTenant(ctx, teamID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrTenantNotFound, teamID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get tenant config: %w", err)
	}

	domains, err := r.store.ListDomains(ctx, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list domains: %w", err)
	}
	if len(domains) == 0 {
		return nil, nil, fmt.Errorf("%w for team %s", ErrNoDomains, teamID)
	}

	sort.Slice(domains, func(i, j int) bool {
		if !domains[i].CreatedAt.Equal(domains[j].CreatedAt) {
			return domains[i].CreatedAt.Before(domains[j].CreatedAt)
		}
		return domains[i].DomainID < domains[j].DomainID
	})

	if selectedDomainID != "" {
		for i := range domains {
			if domains[i].DomainID == selectedDomainID {
				return cfg, &domains[i], nil
			}
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrDomainNotFound, selectedDomainID)
	}

	return cfg, &domains[0], nil
}
