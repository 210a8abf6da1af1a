package inventory

import (
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryEntity "retail.GO/model/entity/inventory"
)

type LedgerRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewLedgerRepository(db *gorm.DB) (*LedgerRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &LedgerRepository{db: db, sqlDB: sqlDB}, nil
}

// QtyOnHand returns the on-hand quantity for one (location, product) row.
// Uses raw SQL for minimal overhead
func (r *LedgerRepository) QtyOnHand(locationID, productID uint) (int, bool) {
	const query = `SELECT qty_on_hand FROM inventory_stock_ledger WHERE location_id = ? AND product_id = ? LIMIT 1`
	var qty sql.NullInt64
	if err := r.sqlDB.QueryRow(query, locationID, productID).Scan(&qty); err != nil || !qty.Valid {
		return 0, false
	}
	return int(qty.Int64), true
}

// GetEntry returns the full ledger row using GORM.
func (r *LedgerRepository) GetEntry(locationID, productID uint) (*inventoryEntity.StockLedgerEntry, error) {
	var entry inventoryEntity.StockLedgerEntry
	err := r.db.Where("location_id = ? AND product_id = ?", locationID, productID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntryForUpdate reads a ledger row inside tx with a row lock where the
// dialect supports it. SQLite serializes writers on its own, so the locking
// clause is only added on MySQL.
func (r *LedgerRepository) GetEntryForUpdate(tx *gorm.DB, locationID, productID uint) (*inventoryEntity.StockLedgerEntry, error) {
	q := tx.Where("location_id = ? AND product_id = ?", locationID, productID)
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var entry inventoryEntity.StockLedgerEntry
	if err := q.First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForLocation returns all ledger rows at a location.
func (r *LedgerRepository) ListForLocation(locationID uint) ([]inventoryEntity.StockLedgerEntry, error) {
	var entries []inventoryEntity.StockLedgerEntry
	err := r.db.Where("location_id = ?", locationID).Order("product_id").Find(&entries).Error
	return entries, err
}

// FindBelowReorder returns rows at or under their reorder point.
func (r *LedgerRepository) FindBelowReorder(locationID uint) ([]inventoryEntity.StockLedgerEntry, error) {
	var entries []inventoryEntity.StockLedgerEntry
	q := r.db.Where("reorder_point > 0 AND qty_on_hand <= reorder_point")
	if locationID > 0 {
		q = q.Where("location_id = ?", locationID)
	}
	err := q.Order("location_id, product_id").Find(&entries).Error
	return entries, err
}

// TotalOnHand sums on-hand quantity for a product across all locations.
func (r *LedgerRepository) TotalOnHand(productID uint) (int, error) {
	const query = `SELECT COALESCE(SUM(qty_on_hand), 0) FROM inventory_stock_ledger WHERE product_id = ?`
	var total int
	err := r.sqlDB.QueryRow(query, productID).Scan(&total)
	return total, err
}

// BatchQtyOnHand fetches on-hand quantities for multiple products at one
// location in one query.
func (r *LedgerRepository) BatchQtyOnHand(locationID uint, productIDs []uint) (map[uint]int, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	result := make(map[uint]int, len(productIDs))
	rows, err := r.db.Table("inventory_stock_ledger").
		Select("product_id, qty_on_hand").
		Where("location_id = ? AND product_id IN ?", locationID, productIDs).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID uint
		var qty int
		if err := rows.Scan(&productID, &qty); err != nil {
			continue
		}
		result[productID] = qty
	}
	return result, nil
}
