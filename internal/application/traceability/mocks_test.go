package traceability

import (
	"context"
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.Product), args.Error(1)
}

func (m *MockProductRepository) FindByGTIN(ctx context.Context, gtin string) (*traceability.Product, error) {
	args := m.Called(ctx, gtin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]traceability.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]traceability.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *traceability.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(ctx context.Context, product *traceability.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ExistsByGTIN(ctx context.Context, gtin string) (bool, error) {
	args := m.Called(ctx, gtin)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockLotRepository is a mock implementation of LotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByProductAndNumber(ctx context.Context, productID uuid.UUID, lotNumber string) (*traceability.Lot, error) {
	args := m.Called(ctx, productID, lotNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]traceability.Lot, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]traceability.Lot), args.Error(1)
}

func (m *MockLotRepository) FindExpiringWithin(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]traceability.Lot, error) {
	args := m.Called(ctx, tenantID, before)
	return args.Get(0).([]traceability.Lot), args.Error(1)
}

func (m *MockLotRepository) Create(ctx context.Context, lot *traceability.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) Save(ctx context.Context, lot *traceability.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

// MockDeliveryRecordRepository is a mock implementation of DeliveryRecordRepository
type MockDeliveryRecordRepository struct {
	mock.Mock
}

func (m *MockDeliveryRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.DeliveryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*traceability.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryRecordRepository) FindByLot(ctx context.Context, lotID uuid.UUID) ([]traceability.DeliveryRecord, error) {
	args := m.Called(ctx, lotID)
	return args.Get(0).([]traceability.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryRecordRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]traceability.DeliveryRecord, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).([]traceability.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryRecordRepository) Create(ctx context.Context, record *traceability.DeliveryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDeliveryRecordRepository) CountByLot(ctx context.Context, lotID uuid.UUID) (int64, error) {
	args := m.Called(ctx, lotID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTenantResolver is a mock implementation of TenantResolver
type MockTenantResolver struct {
	mock.Mock
}

func (m *MockTenantResolver) DefaultTenantID(ctx context.Context) (uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockProductIDCache is a mock implementation of ProductIDCache
type MockProductIDCache struct {
	mock.Mock
}

func (m *MockProductIDCache) Get(ctx context.Context, gtin string) (uuid.UUID, bool) {
	args := m.Called(ctx, gtin)
	return args.Get(0).(uuid.UUID), args.Bool(1)
}

func (m *MockProductIDCache) Set(ctx context.Context, gtin string, id uuid.UUID) {
	m.Called(ctx, gtin, id)
}
