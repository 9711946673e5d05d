package traceability

import "github.com/vetcrm/backend/internal/domain/shared"

// Domain errors for the traceability subsystem
var (
	// ErrTenantNotConfigured is fatal for a resolve call: without a default
	// tenant no scan-originated product may be created.
	ErrTenantNotConfigured = shared.NewDomainError("TENANT_NOT_CONFIGURED", "No default tenant configured for scan-originated products")

	// ErrLotNotFound signals a traceability query for a lot that was never resolved.
	ErrLotNotFound = shared.NewDomainError("LOT_NOT_FOUND", "Lot not found")
)
