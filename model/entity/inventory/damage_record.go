package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DamageRecord represents inventory_transfer_damage table: supplementary
// detail about damaged units on a transfer. The line item damaged counter is
// authoritative; these records are not reconciled against it.
type DamageRecord struct {
	DamageID       uint            `gorm:"column:damage_id;primaryKey;autoIncrement" json:"damage_id"`
	TransferID     uint            `gorm:"column:transfer_id;not null;index" json:"transfer_id"`
	ProductID      uint            `gorm:"column:product_id;not null" json:"product_id"`
	Quantity       int             `gorm:"column:quantity;not null" json:"quantity"`
	Repairable     bool            `gorm:"column:repairable;not null;default:false" json:"repairable"`
	InsuranceClaim bool            `gorm:"column:insurance_claim;not null;default:false" json:"insurance_claim"`
	DamageValue    decimal.Decimal `gorm:"column:damage_value;type:decimal(12,4);not null;default:0" json:"damage_value"`
	Detail         datatypes.JSON  `gorm:"column:detail" json:"detail,omitempty"`
	RecordedBy     string          `gorm:"column:recorded_by;type:varchar(64)" json:"recorded_by,omitempty"`
	RecordedAt     time.Time       `gorm:"column:recorded_at;not null;autoCreateTime" json:"recorded_at"`
}

func (DamageRecord) TableName() string {
	return "inventory_transfer_damage"
}
