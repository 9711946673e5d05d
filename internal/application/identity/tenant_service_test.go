package identity

import (
	"context"
	"testing"

	"github.com/vetcrm/backend/internal/domain/identity"
	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func TestTenantService_Provision(t *testing.T) {
	ctx := context.Background()

	t.Run("creates tenant when absent", func(t *testing.T) {
		repo := new(MockTenantRepository)
		svc := NewTenantService(repo, zap.NewNop())

		repo.On("FindByCode", ctx, "CLINIC1").Return(nil, shared.ErrNotFound).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*identity.Tenant")).Return(nil)

		dto, err := svc.Provision(ctx, "clinic1", "Main Street Clinic")

		require.NoError(t, err)
		assert.Equal(t, "CLINIC1", dto.Code)
		assert.Equal(t, "Main Street Clinic", dto.Name)
		assert.Equal(t, "active", dto.Status)
		repo.AssertExpectations(t)
	})

	t.Run("returns existing tenant unchanged", func(t *testing.T) {
		repo := new(MockTenantRepository)
		svc := NewTenantService(repo, zap.NewNop())

		existing, err := identity.NewTenant("CLINIC1", "Main Street Clinic")
		require.NoError(t, err)
		repo.On("FindByCode", ctx, "CLINIC1").Return(existing, nil)

		dto, err := svc.Provision(ctx, "CLINIC1", "A Different Name")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, dto.ID)
		assert.Equal(t, "Main Street Clinic", dto.Name)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("falls back to winner on concurrent provision", func(t *testing.T) {
		repo := new(MockTenantRepository)
		svc := NewTenantService(repo, zap.NewNop())

		winner, err := identity.NewTenant("CLINIC1", "Main Street Clinic")
		require.NoError(t, err)

		repo.On("FindByCode", ctx, "CLINIC1").Return(nil, shared.ErrNotFound).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*identity.Tenant")).Return(shared.ErrAlreadyExists)
		repo.On("FindByCode", ctx, "CLINIC1").Return(winner, nil).Once()

		dto, err := svc.Provision(ctx, "CLINIC1", "Main Street Clinic")

		require.NoError(t, err)
		assert.Equal(t, winner.ID, dto.ID)
	})

	t.Run("rejects invalid code", func(t *testing.T) {
		repo := new(MockTenantRepository)
		svc := NewTenantService(repo, zap.NewNop())

		repo.On("FindByCode", ctx, "").Return(nil, shared.ErrNotFound)

		_, err := svc.Provision(ctx, "", "Main Street Clinic")
		assert.Error(t, err)
	})
}

func TestTenantService_GetByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tenant", func(t *testing.T) {
		repo := new(MockTenantRepository)
		svc := NewTenantService(repo, zap.NewNop())

		tenant, err := identity.NewTenant("CLINIC1", "Main Street Clinic")
		require.NoError(t, err)
		repo.On("FindByCode", ctx, "CLINIC1").Return(tenant, nil)

		dto, err := svc.GetByCode(ctx, "CLINIC1")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, dto.ID)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockTenantRepository)
		svc := NewTenantService(repo, zap.NewNop())

		repo.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := svc.GetByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
