package inventory

import (
	"time"

	"gorm.io/gorm"

	inventoryEntity "retail.GO/model/entity/inventory"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// withAggregate eagerly loads line items and damage records so every
// returned transfer is fully materialized.
func (r *TransferRepository) withAggregate(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("item_id")
	}).Preload("Damages", func(db *gorm.DB) *gorm.DB {
		return db.Order("damage_id")
	})
}

// FindByID returns the full aggregate for a transfer id.
func (r *TransferRepository) FindByID(transferID uint) (*inventoryEntity.TransferRequest, error) {
	var t inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).First(&t, "transfer_id = ?", transferID).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByNumber returns the full aggregate for a transfer number.
func (r *TransferRepository) FindByNumber(number string) (*inventoryEntity.TransferRequest, error) {
	var t inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).First(&t, "transfer_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NumberExists checks transfer number uniqueness.
func (r *TransferRepository) NumberExists(number string) (bool, error) {
	var count int64
	err := r.db.Model(&inventoryEntity.TransferRequest{}).Where("transfer_number = ?", number).Count(&count).Error
	return count > 0, err
}

// FindByStatus lists transfers in one status, newest first.
func (r *TransferRepository) FindByStatus(status inventoryEntity.TransferStatus) ([]inventoryEntity.TransferRequest, error) {
	var ts []inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).
		Where("status = ?", status).
		Order("requested_at DESC").
		Find(&ts).Error
	return ts, err
}

// FindOverdue lists in-transit transfers whose expected delivery has passed.
func (r *TransferRepository) FindOverdue(now time.Time) ([]inventoryEntity.TransferRequest, error) {
	var ts []inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).
		Where("status = ? AND expected_at IS NOT NULL AND expected_at < ?", inventoryEntity.StatusInTransit, now).
		Order("expected_at").
		Find(&ts).Error
	return ts, err
}

// FindByDateRange lists transfers requested within [from, to).
func (r *TransferRepository) FindByDateRange(from, to time.Time) ([]inventoryEntity.TransferRequest, error) {
	var ts []inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).
		Where("requested_at >= ? AND requested_at < ?", from, to).
		Order("requested_at DESC").
		Find(&ts).Error
	return ts, err
}

// FindForLocation lists transfers touching a location (as source or
// destination), paginated newest first. Returns the page and the total count.
func (r *TransferRepository) FindForLocation(locationID uint, currentPage, pageSize int) ([]inventoryEntity.TransferRequest, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if currentPage <= 0 {
		currentPage = 1
	}

	where := r.db.Model(&inventoryEntity.TransferRequest{}).
		Where("source_location_id = ? OR destination_location_id = ?", locationID, locationID)

	var total int64
	if err := where.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ts []inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).
		Where("source_location_id = ? OR destination_location_id = ?", locationID, locationID).
		Order("requested_at DESC").
		Offset((currentPage - 1) * pageSize).
		Limit(pageSize).
		Find(&ts).Error
	return ts, total, err
}

// FindTouchedSince lists transfers created or transitioned after a cutoff.
// Used by the search index job.
func (r *TransferRepository) FindTouchedSince(since time.Time) ([]inventoryEntity.TransferRequest, error) {
	var ts []inventoryEntity.TransferRequest
	err := r.withAggregate(r.db).
		Where("requested_at >= ? OR approved_at >= ? OR shipped_at >= ? OR received_at >= ? OR cancelled_at >= ?",
			since, since, since, since, since).
		Find(&ts).Error
	return ts, err
}
