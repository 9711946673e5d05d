package traceability

import (
	"context"
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByProductAndNumber finds a lot by its (product, lot number) identity
	FindByProductAndNumber(ctx context.Context, productID uuid.UUID, lotNumber string) (*Lot, error)

	// FindByProduct finds all lots of a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Lot, error)

	// FindExpiringWithin finds lots of a tenant expiring before the given time
	FindExpiringWithin(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]Lot, error)

	// Create inserts a new lot. It returns shared.ErrAlreadyExists when the
	// (product, lot number) uniqueness constraint is violated.
	Create(ctx context.Context, lot *Lot) error

	// Save updates an existing lot
	Save(ctx context.Context, lot *Lot) error
}
