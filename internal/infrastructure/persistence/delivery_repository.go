package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/vetcrm/backend/internal/domain/shared"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliveryRecordRepository implements DeliveryRecordRepository using GORM
type GormDeliveryRecordRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRecordRepository creates a new GormDeliveryRecordRepository
func NewGormDeliveryRecordRepository(db *gorm.DB) *GormDeliveryRecordRepository {
	return &GormDeliveryRecordRepository{db: db}
}

// FindByID finds a delivery record by its ID
func (r *GormDeliveryRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.DeliveryRecord, error) {
	var record traceability.DeliveryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByLot finds all deliveries of a lot ordered by delivery date descending
func (r *GormDeliveryRecordRepository) FindByLot(ctx context.Context, lotID uuid.UUID) ([]traceability.DeliveryRecord, error) {
	var records []traceability.DeliveryRecord
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("delivered_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByClient finds all deliveries to a client
func (r *GormDeliveryRecordRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]traceability.DeliveryRecord, error) {
	var records []traceability.DeliveryRecord
	query := r.applyFilter(r.db.WithContext(ctx).Model(&traceability.DeliveryRecord{}).Where("client_id = ?", clientID), filter)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Create appends a new delivery record
func (r *GormDeliveryRecordRepository) Create(ctx context.Context, record *traceability.DeliveryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CountByLot counts deliveries of a lot
func (r *GormDeliveryRecordRepository) CountByLot(ctx context.Context, lotID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&traceability.DeliveryRecord{}).
		Where("lot_id = ?", lotID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormDeliveryRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("delivered_at DESC")
	}

	return query
}

// Ensure GormDeliveryRecordRepository implements DeliveryRecordRepository
var _ traceability.DeliveryRecordRepository = (*GormDeliveryRecordRepository)(nil)
