package traceability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testGTIN = "00012345678905"

func decodedBarcode(t *testing.T) *traceability.DecodedBarcode {
	t.Helper()
	decoded, err := traceability.Decode("01" + testGTIN + "17250115" + "10LOT42")
	require.NoError(t, err)
	return decoded
}

func existingProduct(t *testing.T, tenantID uuid.UUID) *traceability.Product {
	t.Helper()
	product, err := traceability.NewScannedProduct(tenantID, testGTIN, "Feline vaccine")
	require.NoError(t, err)
	return product
}

func existingLot(t *testing.T, product *traceability.Product) *traceability.Lot {
	t.Helper()
	expiry := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	lot, err := traceability.NewLot(product.TenantID, product.ID, "LOT42", &expiry, "raw")
	require.NoError(t, err)
	return lot
}

func TestScanService_Resolve(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("returns existing product and lot without creating", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		product := existingProduct(t, tenantID)
		lot := existingLot(t, product)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(product, nil)
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(lot, nil)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		assert.False(t, result.IsNewProduct)
		assert.Equal(t, product.ID, result.Product.ID)
		assert.Equal(t, lot.ID, result.Lot.ID)
		productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		lotRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates product and lot on first scan", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(nil, shared.ErrNotFound)
		resolver.On("DefaultTenantID", ctx).Return(tenantID, nil)
		productRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Product")).Return(nil)
		lotRepo.On("FindByProductAndNumber", ctx, mock.AnythingOfType("uuid.UUID"), "LOT42").Return(nil, shared.ErrNotFound)
		lotRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Lot")).Return(nil)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "Feline vaccine")

		require.NoError(t, err)
		assert.True(t, result.IsNewProduct)
		assert.Equal(t, testGTIN, result.Product.GTIN)
		assert.Equal(t, tenantID, result.Product.TenantID)
		assert.Equal(t, "LOT42", result.Lot.LotNumber)
		require.NotNil(t, result.Lot.ExpirationDate)
		productRepo.AssertExpectations(t)
		lotRepo.AssertExpectations(t)
	})

	t.Run("synthesizes placeholder name when none supplied", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(nil, shared.ErrNotFound)
		resolver.On("DefaultTenantID", ctx).Return(tenantID, nil)
		productRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Product")).Return(nil)
		lotRepo.On("FindByProductAndNumber", ctx, mock.AnythingOfType("uuid.UUID"), "LOT42").Return(nil, shared.ErrNotFound)
		lotRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Lot")).Return(nil)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		assert.Equal(t, "Unidentified product "+testGTIN, result.Product.Name)
	})

	t.Run("fails with TenantNotConfigured when no default tenant exists", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(nil, shared.ErrNotFound)
		resolver.On("DefaultTenantID", ctx).Return(uuid.Nil, shared.ErrNotFound)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, traceability.ErrTenantNotConfigured)
		productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("falls back to the winner's row when product create loses a race", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		winner := existingProduct(t, tenantID)
		lot := existingLot(t, winner)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(nil, shared.ErrNotFound).Once()
		resolver.On("DefaultTenantID", ctx).Return(tenantID, nil)
		productRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Product")).Return(shared.ErrAlreadyExists)
		productRepo.On("FindByGTIN", ctx, testGTIN).Return(winner, nil).Once()
		lotRepo.On("FindByProductAndNumber", ctx, winner.ID, "LOT42").Return(lot, nil)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		assert.False(t, result.IsNewProduct)
		assert.Equal(t, winner.ID, result.Product.ID)
	})

	t.Run("falls back to the winner's row when lot create loses a race", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		product := existingProduct(t, tenantID)
		winner := existingLot(t, product)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(product, nil)
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(nil, shared.ErrNotFound).Once()
		lotRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Lot")).Return(shared.ErrAlreadyExists)
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(winner, nil).Once()

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		assert.Equal(t, winner.ID, result.Lot.ID)
	})

	t.Run("existing lot keeps its stored expiration date", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		product := existingProduct(t, tenantID)
		storedExpiry := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
		lot, err := traceability.NewLot(product.TenantID, product.ID, "LOT42", &storedExpiry, "raw")
		require.NoError(t, err)

		productRepo.On("FindByGTIN", ctx, testGTIN).Return(product, nil)
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(lot, nil)

		// The scanned barcode carries expiry 2025-01-15, the stored lot 2024-12-31
		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		require.NotNil(t, result.Lot.ExpirationDate)
		assert.Equal(t, storedExpiry, *result.Lot.ExpirationDate)
		lotRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates unexpected repository errors", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		dbErr := errors.New("connection reset")
		productRepo.On("FindByGTIN", ctx, testGTIN).Return(nil, dbErr)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestScanService_ResolveWithCache(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("cache hit skips the GTIN query", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		productCache := new(MockProductIDCache)
		svc := NewScanService(productRepo, lotRepo, resolver, WithProductIDCache(productCache))

		product := existingProduct(t, tenantID)
		lot := existingLot(t, product)

		productCache.On("Get", ctx, testGTIN).Return(product.ID, true)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(lot, nil)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		assert.Equal(t, product.ID, result.Product.ID)
		productRepo.AssertNotCalled(t, "FindByGTIN", mock.Anything, mock.Anything)
	})

	t.Run("stale cache entry falls through to the GTIN query", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		productCache := new(MockProductIDCache)
		svc := NewScanService(productRepo, lotRepo, resolver, WithProductIDCache(productCache))

		product := existingProduct(t, tenantID)
		lot := existingLot(t, product)
		staleID := uuid.New()

		productCache.On("Get", ctx, testGTIN).Return(staleID, true)
		productRepo.On("FindByID", ctx, staleID).Return(nil, shared.ErrNotFound)
		productRepo.On("FindByGTIN", ctx, testGTIN).Return(product, nil)
		productCache.On("Set", ctx, testGTIN, product.ID).Return()
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(lot, nil)

		result, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		assert.Equal(t, product.ID, result.Product.ID)
		productCache.AssertExpectations(t)
	})

	t.Run("cache miss populates the cache after lookup", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		productCache := new(MockProductIDCache)
		svc := NewScanService(productRepo, lotRepo, resolver, WithProductIDCache(productCache))

		product := existingProduct(t, tenantID)
		lot := existingLot(t, product)

		productCache.On("Get", ctx, testGTIN).Return(uuid.Nil, false)
		productRepo.On("FindByGTIN", ctx, testGTIN).Return(product, nil)
		productCache.On("Set", ctx, testGTIN, product.ID).Return()
		lotRepo.On("FindByProductAndNumber", ctx, product.ID, "LOT42").Return(lot, nil)

		_, err := svc.Resolve(ctx, decodedBarcode(t), "")

		require.NoError(t, err)
		productCache.AssertExpectations(t)
	})
}

func TestScanService_DecodeAndResolve(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("decode failure does not touch storage", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		result, err := svc.DecodeAndResolve(ctx, "garbage", "")

		assert.Nil(t, result)
		var decodeErr *traceability.DecodeError
		assert.ErrorAs(t, err, &decodeErr)
		productRepo.AssertNotCalled(t, "FindByGTIN", mock.Anything, mock.Anything)
	})

	t.Run("repeated scans of the same element string are idempotent", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		lotRepo := new(MockLotRepository)
		resolver := new(MockTenantResolver)
		svc := NewScanService(productRepo, lotRepo, resolver)

		barcode := "01" + testGTIN + "17250115" + "10LOT42"

		// First scan creates both rows
		productRepo.On("FindByGTIN", ctx, testGTIN).Return(nil, shared.ErrNotFound).Once()
		resolver.On("DefaultTenantID", ctx).Return(tenantID, nil)
		var created *traceability.Product
		productRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Product")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*traceability.Product)
		}).Return(nil).Once()
		lotRepo.On("FindByProductAndNumber", ctx, mock.AnythingOfType("uuid.UUID"), "LOT42").Return(nil, shared.ErrNotFound).Once()
		var createdLot *traceability.Lot
		lotRepo.On("Create", ctx, mock.AnythingOfType("*traceability.Lot")).Run(func(args mock.Arguments) {
			createdLot = args.Get(1).(*traceability.Lot)
		}).Return(nil).Once()

		first, err := svc.DecodeAndResolve(ctx, barcode, "")
		require.NoError(t, err)
		assert.True(t, first.IsNewProduct)

		// Second scan finds the stored rows
		productRepo.On("FindByGTIN", ctx, testGTIN).Return(created, nil).Once()
		lotRepo.On("FindByProductAndNumber", ctx, created.ID, "LOT42").Return(createdLot, nil).Once()

		second, err := svc.DecodeAndResolve(ctx, barcode, "")
		require.NoError(t, err)
		assert.False(t, second.IsNewProduct)
		assert.Equal(t, first.Product.ID, second.Product.ID)
		assert.Equal(t, first.Lot.ID, second.Lot.ID)
	})
}
