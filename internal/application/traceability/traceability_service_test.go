package traceability

import (
	"context"
	"testing"
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deliveryOf(t *testing.T, tenantID, lotID, clientID uuid.UUID, quantity int, deliveredAt time.Time) traceability.DeliveryRecord {
	t.Helper()
	record, err := traceability.NewDeliveryRecord(tenantID, lotID, clientID, quantity, &deliveredAt)
	require.NoError(t, err)
	return *record
}

func TestTraceabilityService_AssociateDelivery(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("records delivery for existing lot", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)
		clientID := uuid.New()

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		deliveryRepo.On("Create", ctx, mock.AnythingOfType("*traceability.DeliveryRecord")).Return(nil)

		delivery, err := svc.AssociateDelivery(ctx, AssociateDeliveryRequest{
			LotID:    lot.ID,
			ClientID: clientID,
			Quantity: 5,
		})

		require.NoError(t, err)
		assert.Equal(t, lot.ID, delivery.LotID)
		assert.Equal(t, clientID, delivery.ClientID)
		assert.Equal(t, 5, delivery.Quantity)
		deliveryRepo.AssertExpectations(t)
	})

	t.Run("zero quantity defaults to one", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		deliveryRepo.On("Create", ctx, mock.AnythingOfType("*traceability.DeliveryRecord")).Return(nil)

		delivery, err := svc.AssociateDelivery(ctx, AssociateDeliveryRequest{
			LotID:    lot.ID,
			ClientID: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, delivery.Quantity)
	})

	t.Run("fails with LotNotFound for unknown lot", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lotID := uuid.New()
		lotRepo.On("FindByID", ctx, lotID).Return(nil, shared.ErrNotFound)

		delivery, err := svc.AssociateDelivery(ctx, AssociateDeliveryRequest{
			LotID:    lotID,
			ClientID: uuid.New(),
			Quantity: 1,
		})

		assert.Nil(t, delivery)
		assert.ErrorIs(t, err, traceability.ErrLotNotFound)
		deliveryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)

		delivery, err := svc.AssociateDelivery(ctx, AssociateDeliveryRequest{
			LotID:    lot.ID,
			ClientID: uuid.New(),
			Quantity: -2,
		})

		assert.Nil(t, delivery)
		assert.Error(t, err)
		deliveryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repeated deliveries each append a new record", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)
		clientID := uuid.New()

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		deliveryRepo.On("Create", ctx, mock.AnythingOfType("*traceability.DeliveryRecord")).Return(nil)

		req := AssociateDeliveryRequest{LotID: lot.ID, ClientID: clientID, Quantity: 3}

		first, err := svc.AssociateDelivery(ctx, req)
		require.NoError(t, err)
		second, err := svc.AssociateDelivery(ctx, req)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		deliveryRepo.AssertNumberOfCalls(t, "Create", 2)
	})
}

func TestTraceabilityService_GetTraceability(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("aggregates total quantity and distinct clients", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)

		clientA := uuid.New()
		clientB := uuid.New()
		deliveries := []traceability.DeliveryRecord{
			deliveryOf(t, tenantID, lot.ID, clientA, 5, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)),
			deliveryOf(t, tenantID, lot.ID, clientB, 10, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
			deliveryOf(t, tenantID, lot.ID, clientA, 7, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		}

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		deliveryRepo.On("FindByLot", ctx, lot.ID).Return(deliveries, nil)

		report, err := svc.GetTraceability(ctx, lot.ID)

		require.NoError(t, err)
		assert.Equal(t, 22, report.TotalQuantity)
		assert.Equal(t, 2, report.ClientCount)
		assert.Len(t, report.Deliveries, 3)
		assert.Equal(t, lot.ID, report.Lot.ID)
	})

	t.Run("lot without deliveries yields an empty report", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		deliveryRepo.On("FindByLot", ctx, lot.ID).Return([]traceability.DeliveryRecord{}, nil)

		report, err := svc.GetTraceability(ctx, lot.ID)

		require.NoError(t, err)
		assert.Zero(t, report.TotalQuantity)
		assert.Zero(t, report.ClientCount)
		assert.Empty(t, report.Deliveries)
	})

	t.Run("fails with LotNotFound for unknown lot", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lotID := uuid.New()
		lotRepo.On("FindByID", ctx, lotID).Return(nil, shared.ErrNotFound)

		report, err := svc.GetTraceability(ctx, lotID)

		assert.Nil(t, report)
		assert.ErrorIs(t, err, traceability.ErrLotNotFound)
		deliveryRepo.AssertNotCalled(t, "FindByLot", mock.Anything, mock.Anything)
	})

	t.Run("deliveries preserve the repository ordering", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRecordRepository)
		svc := NewTraceabilityService(lotRepo, deliveryRepo)

		lot, err := traceability.NewLot(tenantID, uuid.New(), "LOT42", nil, "raw")
		require.NoError(t, err)

		newest := deliveryOf(t, tenantID, lot.ID, uuid.New(), 1, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
		oldest := deliveryOf(t, tenantID, lot.ID, uuid.New(), 1, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		deliveryRepo.On("FindByLot", ctx, lot.ID).Return([]traceability.DeliveryRecord{newest, oldest}, nil)

		report, err := svc.GetTraceability(ctx, lot.ID)

		require.NoError(t, err)
		require.Len(t, report.Deliveries, 2)
		assert.Equal(t, newest.ID, report.Deliveries[0].ID)
		assert.Equal(t, oldest.ID, report.Deliveries[1].ID)
	})
}
