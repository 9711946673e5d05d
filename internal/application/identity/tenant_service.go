package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vetcrm/backend/internal/domain/identity"
	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService handles tenant management operations
type TenantService struct {
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// TenantDTO represents tenant data transfer object
type TenantDTO struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Provision ensures a tenant with the given code exists and returns it.
// The call is idempotent: an existing tenant is returned unchanged, so it
// is safe to run at startup or repeatedly from provisioning scripts.
func (s *TenantService) Provision(ctx context.Context, code, name string) (*TenantDTO, error) {
	existing, err := s.tenantRepo.FindByCode(ctx, code)
	if err == nil {
		return toTenantDTO(existing), nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}

	tenant, err := identity.NewTenant(code, name)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		// A concurrent provisioner may have won; return its row.
		if errors.Is(err, shared.ErrAlreadyExists) {
			winner, findErr := s.tenantRepo.FindByCode(ctx, code)
			if findErr != nil {
				return nil, findErr
			}
			return toTenantDTO(winner), nil
		}
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}

	s.logger.Info("Tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))

	return toTenantDTO(tenant), nil
}

// GetByCode returns the tenant with the given code
func (s *TenantService) GetByCode(ctx context.Context, code string) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

func toTenantDTO(tenant *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:        tenant.ID,
		Code:      tenant.Code,
		Name:      tenant.Name,
		Status:    string(tenant.Status),
		CreatedAt: tenant.CreatedAt,
	}
}
