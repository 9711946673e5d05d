package traceability

import (
	"context"
	"errors"
	"fmt"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/vetcrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// TenantResolver supplies the tenant that owns scan-originated products.
// Implementations return shared.ErrNotFound when no default tenant exists.
type TenantResolver interface {
	DefaultTenantID(ctx context.Context) (uuid.UUID, error)
}

// ProductIDCache caches GTIN to product-id mappings. A product's identity
// never changes once created, so cached entries cannot go stale; a miss or
// an evicted entry only costs one extra query.
type ProductIDCache interface {
	Get(ctx context.Context, gtin string) (uuid.UUID, bool)
	Set(ctx context.Context, gtin string, id uuid.UUID)
}

// ScanServiceOption configures a ScanService
type ScanServiceOption func(*ScanService)

// WithProductIDCache enables the GTIN lookup cache
func WithProductIDCache(cache ProductIDCache) ScanServiceOption {
	return func(s *ScanService) {
		s.cache = cache
	}
}

// ScanService resolves decoded barcode data to durable product and lot
// identities. Resolution is idempotent: re-scanning the same element string
// returns the same rows, and concurrent first scans converge on a single
// row per GTIN and per (product, lot number) via the storage uniqueness
// constraints.
type ScanService struct {
	productRepo    traceability.ProductRepository
	lotRepo        traceability.LotRepository
	tenantResolver TenantResolver
	cache          ProductIDCache
}

// NewScanService creates a new ScanService
func NewScanService(
	productRepo traceability.ProductRepository,
	lotRepo traceability.LotRepository,
	tenantResolver TenantResolver,
	opts ...ScanServiceOption,
) *ScanService {
	s := &ScanService{
		productRepo:    productRepo,
		lotRepo:        lotRepo,
		tenantResolver: tenantResolver,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DecodeAndResolve decodes a raw scanned string and resolves the result.
// Decode failures are returned as *traceability.DecodeError without touching
// storage.
func (s *ScanService) DecodeAndResolve(ctx context.Context, barcode, displayName string) (*ScanResult, error) {
	decoded, err := traceability.Decode(barcode)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, decoded, displayName)
}

// Resolve finds or creates the product and lot for decoded barcode data.
// IsNewProduct is true only when this call actually created the product.
func (s *ScanService) Resolve(ctx context.Context, decoded *traceability.DecodedBarcode, displayName string) (*ScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "scan", "resolve")
	defer span.End()

	telemetry.SetAttributes(span,
		"gtin", decoded.GTIN,
		"lot_number", decoded.LotNumber,
	)

	product, isNew, err := s.resolveProduct(ctx, decoded, displayName)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lot, err := s.resolveLot(ctx, product, decoded)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "is_new_product", isNew)

	return &ScanResult{
		Product:      ToProductResponse(product),
		Lot:          ToLotResponse(lot),
		IsNewProduct: isNew,
	}, nil
}

// resolveProduct looks up the product by GTIN and creates it when absent.
// A uniqueness violation on create means another writer won the race; the
// winner's row is re-read and returned instead of propagating the conflict.
func (s *ScanService) resolveProduct(ctx context.Context, decoded *traceability.DecodedBarcode, displayName string) (*traceability.Product, bool, error) {
	if s.cache != nil {
		if id, ok := s.cache.Get(ctx, decoded.GTIN); ok {
			product, err := s.productRepo.FindByID(ctx, id)
			if err == nil {
				return product, false, nil
			}
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, false, err
			}
		}
	}

	product, err := s.productRepo.FindByGTIN(ctx, decoded.GTIN)
	if err == nil {
		if s.cache != nil {
			s.cache.Set(ctx, decoded.GTIN, product.ID)
		}
		return product, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	tenantID, err := s.tenantResolver.DefaultTenantID(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, false, traceability.ErrTenantNotConfigured
		}
		return nil, false, fmt.Errorf("failed to resolve default tenant: %w", err)
	}

	product, err = traceability.NewScannedProduct(tenantID, decoded.GTIN, displayName)
	if err != nil {
		return nil, false, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.productRepo.FindByGTIN(ctx, decoded.GTIN)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, decoded.GTIN, product.ID)
	}
	return product, true, nil
}

// resolveLot looks up the lot by (product, lot number) and creates it when
// absent. An existing lot is returned unchanged: a later scan carrying a
// different expiration date does not update the stored value.
func (s *ScanService) resolveLot(ctx context.Context, product *traceability.Product, decoded *traceability.DecodedBarcode) (*traceability.Lot, error) {
	lot, err := s.lotRepo.FindByProductAndNumber(ctx, product.ID, decoded.LotNumber)
	if err == nil {
		return lot, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	lot, err = traceability.NewLot(product.TenantID, product.ID, decoded.LotNumber, decoded.ExpirationDate, decoded.RawBarcode)
	if err != nil {
		return nil, err
	}

	if err := s.lotRepo.Create(ctx, lot); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.lotRepo.FindByProductAndNumber(ctx, product.ID, decoded.LotNumber)
		}
		return nil, err
	}

	return lot, nil
}
