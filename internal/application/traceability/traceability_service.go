package traceability

import (
	"context"
	"errors"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/vetcrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// TraceabilityService records deliveries of lots to clients and aggregates
// delivery history for recall investigations.
type TraceabilityService struct {
	lotRepo      traceability.LotRepository
	deliveryRepo traceability.DeliveryRecordRepository
}

// NewTraceabilityService creates a new TraceabilityService
func NewTraceabilityService(
	lotRepo traceability.LotRepository,
	deliveryRepo traceability.DeliveryRecordRepository,
) *TraceabilityService {
	return &TraceabilityService{
		lotRepo:      lotRepo,
		deliveryRepo: deliveryRepo,
	}
}

// AssociateDelivery records one shipment of a lot to a client. Every call
// appends a new record; repeated deliveries of the same lot/client pair are
// deliberately not merged.
func (s *TraceabilityService) AssociateDelivery(ctx context.Context, req AssociateDeliveryRequest) (*DeliveryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "traceability", "associate_delivery")
	defer span.End()

	telemetry.SetAttributes(span,
		"lot_id", req.LotID.String(),
		"client_id", req.ClientID.String(),
	)

	lot, err := s.lotRepo.FindByID(ctx, req.LotID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = traceability.ErrLotNotFound
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	record, err := traceability.NewDeliveryRecord(lot.TenantID, lot.ID, req.ClientID, quantity, req.DeliveredAt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.deliveryRepo.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToDeliveryResponse(record)
	return &response, nil
}

// GetTraceability aggregates the delivery history of a lot: all deliveries
// ordered by delivery date descending, the total quantity shipped, and the
// number of distinct clients that received the lot.
func (s *TraceabilityService) GetTraceability(ctx context.Context, lotID uuid.UUID) (*TraceabilityReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "traceability", "get_traceability")
	defer span.End()

	telemetry.SetAttribute(span, "lot_id", lotID.String())

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = traceability.ErrLotNotFound
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	deliveries, err := s.deliveryRepo.FindByLot(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	totalQuantity := 0
	clients := make(map[uuid.UUID]struct{})
	responses := make([]DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		record := &deliveries[i]
		totalQuantity += record.Quantity
		clients[record.ClientID] = struct{}{}
		responses = append(responses, ToDeliveryResponse(record))
	}

	telemetry.SetAttributes(span,
		"delivery_count", len(deliveries),
		"client_count", len(clients),
	)

	return &TraceabilityReport{
		Lot:           ToLotResponse(lot),
		Deliveries:    responses,
		TotalQuantity: totalQuantity,
		ClientCount:   len(clients),
	}, nil
}
