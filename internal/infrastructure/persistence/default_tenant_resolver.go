package persistence

import (
	"context"
	"sync"

	apptraceability "github.com/vetcrm/backend/internal/application/traceability"
	"github.com/vetcrm/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// DefaultTenantResolver resolves the tenant that owns scan-originated
// products by its configured code. The resolved id is cached after the
// first successful lookup because a tenant's id never changes.
type DefaultTenantResolver struct {
	tenantRepo identity.TenantRepository
	tenantCode string

	mu       sync.RWMutex
	resolved uuid.UUID
}

// NewDefaultTenantResolver creates a resolver for the given tenant code
func NewDefaultTenantResolver(tenantRepo identity.TenantRepository, tenantCode string) *DefaultTenantResolver {
	return &DefaultTenantResolver{
		tenantRepo: tenantRepo,
		tenantCode: tenantCode,
	}
}

// DefaultTenantID returns the id of the configured default tenant.
// It returns shared.ErrNotFound (propagated from the repository) when
// no tenant with the configured code exists.
func (r *DefaultTenantResolver) DefaultTenantID(ctx context.Context) (uuid.UUID, error) {
	r.mu.RLock()
	if r.resolved != uuid.Nil {
		id := r.resolved
		r.mu.RUnlock()
		return id, nil
	}
	r.mu.RUnlock()

	tenant, err := r.tenantRepo.FindByCode(ctx, r.tenantCode)
	if err != nil {
		return uuid.Nil, err
	}

	r.mu.Lock()
	r.resolved = tenant.ID
	r.mu.Unlock()

	return tenant.ID, nil
}

// Ensure DefaultTenantResolver implements TenantResolver
var _ apptraceability.TenantResolver = (*DefaultTenantResolver)(nil)
