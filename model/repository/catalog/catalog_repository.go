package catalog

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	entity "retail.GO/model/entity"
)

// CatalogRepository resolves product and location references for the
// transfer engine. The full catalog lives elsewhere; this only answers
// exists/name questions.
type CatalogRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewCatalogRepository(db *gorm.DB) (*CatalogRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{db: db, sqlDB: sqlDB}, nil
}

// ProductExists checks an active product id.
// Uses raw SQL for minimal overhead
func (r *CatalogRepository) ProductExists(productID uint) (bool, error) {
	const query = `SELECT 1 FROM catalog_product WHERE product_id = ? AND is_active = ? LIMIT 1`
	var one int
	err := r.sqlDB.QueryRow(query, productID, true).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LocationExists checks an active location id.
func (r *CatalogRepository) LocationExists(locationID uint) (bool, error) {
	const query = `SELECT 1 FROM inventory_location WHERE location_id = ? AND is_active = ? LIMIT 1`
	var one int
	err := r.sqlDB.QueryRow(query, locationID, true).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetProduct returns the full product row using GORM.
func (r *CatalogRepository) GetProduct(productID uint) (*entity.Product, error) {
	var p entity.Product
	err := r.db.First(&p, "product_id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetLocation returns the full location row using GORM.
func (r *CatalogRepository) GetLocation(locationID uint) (*entity.Location, error) {
	var l entity.Location
	err := r.db.First(&l, "location_id = ?", locationID).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// IsNotFound reports a gorm record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
