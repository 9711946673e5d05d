package traceability

import (
	"time"

	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/google/uuid"
)

// ProductResponse is the product representation returned to callers
type ProductResponse struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	GTIN     string    `json:"gtin"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
}

// LotResponse is the lot representation returned to callers
type LotResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	LotNumber      string     `json:"lot_number"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	RawBarcode     string     `json:"raw_barcode"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DeliveryResponse is the delivery record representation returned to callers
type DeliveryResponse struct {
	ID          uuid.UUID `json:"id"`
	LotID       uuid.UUID `json:"lot_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Quantity    int       `json:"quantity"`
	DeliveredAt time.Time `json:"delivered_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScanResult is the outcome of resolving a decoded barcode
type ScanResult struct {
	Product      ProductResponse `json:"product"`
	Lot          LotResponse     `json:"lot"`
	IsNewProduct bool            `json:"is_new_product"`
}

// AssociateDeliveryRequest carries the data for recording a delivery.
// A zero Quantity defaults to 1; a nil DeliveredAt defaults to now.
type AssociateDeliveryRequest struct {
	LotID       uuid.UUID  `json:"lot_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Quantity    int        `json:"quantity"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// TraceabilityReport aggregates the delivery history of a lot
type TraceabilityReport struct {
	Lot           LotResponse        `json:"lot"`
	Deliveries    []DeliveryResponse `json:"deliveries"`
	TotalQuantity int                `json:"total_quantity"`
	ClientCount   int                `json:"client_count"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(product *traceability.Product) ProductResponse {
	return ProductResponse{
		ID:       product.ID,
		TenantID: product.TenantID,
		GTIN:     product.GTIN,
		Code:     product.Code,
		Name:     product.Name,
	}
}

// ToLotResponse converts a domain lot to a response DTO
func ToLotResponse(lot *traceability.Lot) LotResponse {
	return LotResponse{
		ID:             lot.ID,
		ProductID:      lot.ProductID,
		LotNumber:      lot.LotNumber,
		ExpirationDate: lot.ExpirationDate,
		RawBarcode:     lot.RawBarcode,
		CreatedAt:      lot.CreatedAt,
	}
}

// ToDeliveryResponse converts a domain delivery record to a response DTO
func ToDeliveryResponse(record *traceability.DeliveryRecord) DeliveryResponse {
	return DeliveryResponse{
		ID:          record.ID,
		LotID:       record.LotID,
		ClientID:    record.ClientID,
		Quantity:    record.Quantity,
		DeliveredAt: record.DeliveredAt,
		CreatedAt:   record.CreatedAt,
	}
}
