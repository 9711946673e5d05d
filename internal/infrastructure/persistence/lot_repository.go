package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.Lot, error) {
	var lot traceability.Lot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByProductAndNumber finds a lot by its (product, lot number) identity
func (r *GormLotRepository) FindByProductAndNumber(ctx context.Context, productID uuid.UUID, lotNumber string) (*traceability.Lot, error) {
	var lot traceability.Lot
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND lot_number = ?", productID, lotNumber).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByProduct finds all lots of a product
func (r *GormLotRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]traceability.Lot, error) {
	var lots []traceability.Lot
	query := r.applyFilter(r.db.WithContext(ctx).Model(&traceability.Lot{}).Where("product_id = ?", productID), filter)

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindExpiringWithin finds lots of a tenant expiring before the given time.
// Lots without an expiration date are excluded.
func (r *GormLotRepository) FindExpiringWithin(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]traceability.Lot, error) {
	var lots []traceability.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expiration_date IS NOT NULL AND expiration_date <= ?", tenantID, before).
		Order("expiration_date ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Create inserts a new lot. Uniqueness violations on (product_id, lot_number)
// surface as shared.ErrAlreadyExists so callers can re-read the winner's row.
func (r *GormLotRepository) Create(ctx context.Context, lot *traceability.Lot) error {
	if err := r.db.WithContext(ctx).Create(lot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing lot
func (r *GormLotRepository) Save(ctx context.Context, lot *traceability.Lot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// applyFilter applies filter options to the query
func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("lot_number ILIKE ?", searchPattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormLotRepository implements LotRepository
var _ traceability.LotRepository = (*GormLotRepository)(nil)
