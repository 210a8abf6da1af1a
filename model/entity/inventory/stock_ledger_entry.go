package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLedgerEntry represents inventory_stock_ledger table: the quantity of
// one product held at one location. QtyOnHand never goes negative; every
// mutation goes through the ledger service.
type StockLedgerEntry struct {
	EntryID      uint            `gorm:"column:entry_id;primaryKey;autoIncrement" json:"entry_id,omitempty"`
	LocationID   uint            `gorm:"column:location_id;not null;uniqueIndex:idx_ledger_loc_prod" json:"location_id"`
	ProductID    uint            `gorm:"column:product_id;not null;uniqueIndex:idx_ledger_loc_prod" json:"product_id"`
	QtyOnHand    int             `gorm:"column:qty_on_hand;not null;default:0" json:"qty_on_hand"`
	QtyInTransit int             `gorm:"column:qty_in_transit;not null;default:0" json:"qty_in_transit"`
	ReorderPoint int             `gorm:"column:reorder_point;not null;default:0" json:"reorder_point"`
	MinQty       int             `gorm:"column:min_qty;not null;default:0" json:"min_qty"`
	MaxQty       int             `gorm:"column:max_qty;not null;default:0" json:"max_qty"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,4);not null;default:0" json:"unit_cost"`
	ExpiresAt    *time.Time      `gorm:"column:expires_at" json:"expires_at,omitempty"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (StockLedgerEntry) TableName() string {
	return "inventory_stock_ledger"
}

// BelowReorder reports whether on-hand has dropped to the reorder point.
func (e *StockLedgerEntry) BelowReorder() bool {
	return e.ReorderPoint > 0 && e.QtyOnHand <= e.ReorderPoint
}
