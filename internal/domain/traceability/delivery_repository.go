package traceability

import (
	"context"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryRecordRepository defines the interface for delivery record persistence.
// Delivery records carry no uniqueness constraint: every create appends.
type DeliveryRecordRepository interface {
	// FindByID finds a delivery record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryRecord, error)

	// FindByLot finds all deliveries of a lot ordered by delivery date descending
	FindByLot(ctx context.Context, lotID uuid.UUID) ([]DeliveryRecord, error)

	// FindByClient finds all deliveries to a client
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]DeliveryRecord, error)

	// Create appends a new delivery record
	Create(ctx context.Context, record *DeliveryRecord) error

	// CountByLot counts deliveries of a lot
	CountByLot(ctx context.Context, lotID uuid.UUID) (int64, error)
}
