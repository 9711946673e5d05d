package traceability

import (
	"context"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByGTIN finds a product by its GTIN
	FindByGTIN(ctx context.Context, gtin string) (*Product, error)

	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Create inserts a new product. It returns shared.ErrAlreadyExists when
	// the GTIN uniqueness constraint is violated, so callers can fall back
	// to re-reading the row another writer created.
	Create(ctx context.Context, product *Product) error

	// Save updates an existing product
	Save(ctx context.Context, product *Product) error

	// ExistsByGTIN checks if a product with the given GTIN exists
	ExistsByGTIN(ctx context.Context, gtin string) (bool, error)

	// CountForTenant counts products for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
