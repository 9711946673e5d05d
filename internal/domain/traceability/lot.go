package traceability

import (
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Lot represents a production batch of a product.
// Its identity is the (product, lot number) pair; a lot is created once on
// first resolve and the stored expiration date is immutable via the scan
// path afterwards. The raw scanned string is kept for audit.
type Lot struct {
	shared.TenantAggregateRoot
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_lot_product_number,priority:1"`
	LotNumber      string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_lot_product_number,priority:2"`
	ExpirationDate *time.Time `gorm:"index"`
	RawBarcode     string     `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}

// NewLot creates a new lot for a product
func NewLot(tenantID, productID uuid.UUID, lotNumber string, expirationDate *time.Time, rawBarcode string) (*Lot, error) {
	if err := validateLotNumber(lotNumber); err != nil {
		return nil, err
	}

	lot := &Lot{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LotNumber:           lotNumber,
		ExpirationDate:      expirationDate,
		RawBarcode:          rawBarcode,
	}

	lot.AddDomainEvent(NewLotRegisteredEvent(lot))

	return lot, nil
}

// IsExpired returns true if the lot's expiration date has passed
func (l *Lot) IsExpired() bool {
	if l.ExpirationDate == nil {
		return false
	}
	return l.ExpirationDate.Before(time.Now())
}

// ExpiresWithin returns true if the lot expires within the given duration
func (l *Lot) ExpiresWithin(d time.Duration) bool {
	if l.ExpirationDate == nil {
		return false
	}
	return l.ExpirationDate.Before(time.Now().Add(d))
}

// validateLotNumber requires a non-empty alphanumeric lot number
func validateLotNumber(lotNumber string) error {
	if lotNumber == "" {
		return shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number cannot be empty")
	}
	if len(lotNumber) > 50 {
		return shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number cannot exceed 50 characters")
	}
	for i := 0; i < len(lotNumber); i++ {
		if !isAlphanumeric(lotNumber[i]) {
			return shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number can only contain letters and digits")
		}
	}
	return nil
}
