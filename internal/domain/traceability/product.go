package traceability

import (
	"fmt"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// scannedProductCodePrefix marks internal codes of products that were
// auto-created from a barcode scan rather than entered by hand.
const scannedProductCodePrefix = "SCAN-"

// Product represents a trade item identified by its GTIN.
// It is the aggregate root for product-related operations; a product is
// created once per distinct GTIN and never deleted by this subsystem.
type Product struct {
	shared.TenantAggregateRoot
	GTIN string `gorm:"type:varchar(14);not null;uniqueIndex"`
	Code string `gorm:"type:varchar(50);not null;index"`
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewScannedProduct creates a product from decoded barcode data.
// The internal code is derived from the GTIN; when no display name is
// supplied a placeholder embedding the GTIN is synthesized.
func NewScannedProduct(tenantID uuid.UUID, gtin, name string) (*Product, error) {
	if err := validateGTINFormat(gtin); err != nil {
		return nil, err
	}
	if name == "" {
		name = fmt.Sprintf("Unidentified product %s", gtin)
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		GTIN:                gtin,
		Code:                scannedProductCodePrefix + gtin,
		Name:                name,
	}

	product.AddDomainEvent(NewProductRegisteredEvent(product))

	return product, nil
}

// WasScanned returns true if the product was auto-created from a scan
func (p *Product) WasScanned() bool {
	return len(p.Code) > len(scannedProductCodePrefix) && p.Code[:len(scannedProductCodePrefix)] == scannedProductCodePrefix
}

// validateGTINFormat requires exactly 14 ASCII digits. The mod-10 check
// digit is not enforced here; IsValidGTIN is available to callers that
// want to reject miskeyed identifiers.
func validateGTINFormat(gtin string) error {
	if len(gtin) != gtinLength || leadingDigits(gtin) != gtinLength {
		return shared.NewDomainError("INVALID_GTIN", fmt.Sprintf("GTIN must be exactly %d digits", gtinLength))
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
