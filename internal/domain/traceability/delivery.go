package traceability

import (
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryRecord represents one shipment of a quantity of a lot to a client.
// Records are append-only: repeated deliveries of the same lot/client pair
// each create a new row, supporting partial deliveries over time.
type DeliveryRecord struct {
	shared.TenantAggregateRoot
	LotID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity    int       `gorm:"not null"`
	DeliveredAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DeliveryRecord) TableName() string {
	return "delivery_records"
}

// NewDeliveryRecord creates a delivery of a lot to a client.
// The delivery date defaults to the time of association when not supplied.
func NewDeliveryRecord(tenantID, lotID, clientID uuid.UUID, quantity int, deliveredAt *time.Time) (*DeliveryRecord, error) {
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Delivery quantity must be at least 1")
	}

	at := time.Now()
	if deliveredAt != nil {
		at = *deliveredAt
	}

	record := &DeliveryRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LotID:               lotID,
		ClientID:            clientID,
		Quantity:            quantity,
		DeliveredAt:         at,
	}

	record.AddDomainEvent(NewDeliveryRecordedEvent(record))

	return record, nil
}
