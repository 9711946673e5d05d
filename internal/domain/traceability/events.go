package traceability

import (
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeProduct        = "Product"
	AggregateTypeLot            = "Lot"
	AggregateTypeDeliveryRecord = "DeliveryRecord"
)

// Event type constants
const (
	EventTypeProductRegistered = "ProductRegistered"
	EventTypeLotRegistered     = "LotRegistered"
	EventTypeDeliveryRecorded  = "DeliveryRecorded"
)

// ProductRegisteredEvent is published when a product is created from a scan
type ProductRegisteredEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	GTIN      string    `json:"gtin"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
}

// NewProductRegisteredEvent creates a new ProductRegisteredEvent
func NewProductRegisteredEvent(product *Product) *ProductRegisteredEvent {
	return &ProductRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductRegistered, AggregateTypeProduct, product.ID, product.TenantID),
		ProductID:       product.ID,
		GTIN:            product.GTIN,
		Code:            product.Code,
		Name:            product.Name,
	}
}

// LotRegisteredEvent is published when a lot is first resolved for a product
type LotRegisteredEvent struct {
	shared.BaseDomainEvent
	LotID          uuid.UUID  `json:"lot_id"`
	ProductID      uuid.UUID  `json:"product_id"`
	LotNumber      string     `json:"lot_number"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// NewLotRegisteredEvent creates a new LotRegisteredEvent
func NewLotRegisteredEvent(lot *Lot) *LotRegisteredEvent {
	return &LotRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotRegistered, AggregateTypeLot, lot.ID, lot.TenantID),
		LotID:           lot.ID,
		ProductID:       lot.ProductID,
		LotNumber:       lot.LotNumber,
		ExpirationDate:  lot.ExpirationDate,
	}
}

// DeliveryRecordedEvent is published when a delivery of a lot is recorded
type DeliveryRecordedEvent struct {
	shared.BaseDomainEvent
	DeliveryID  uuid.UUID `json:"delivery_id"`
	LotID       uuid.UUID `json:"lot_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Quantity    int       `json:"quantity"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// NewDeliveryRecordedEvent creates a new DeliveryRecordedEvent
func NewDeliveryRecordedEvent(record *DeliveryRecord) *DeliveryRecordedEvent {
	return &DeliveryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryRecorded, AggregateTypeDeliveryRecord, record.ID, record.TenantID),
		DeliveryID:      record.ID,
		LotID:           record.LotID,
		ClientID:        record.ClientID,
		Quantity:        record.Quantity,
		DeliveredAt:     record.DeliveredAt,
	}
}
