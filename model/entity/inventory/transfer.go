package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a TransferRequest.
type TransferStatus string

const (
	StatusPending   TransferStatus = "pending"
	StatusApproved  TransferStatus = "approved"
	StatusInTransit TransferStatus = "in_transit"
	StatusReceived  TransferStatus = "received"
	StatusCompleted TransferStatus = "completed"
	StatusCancelled TransferStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s TransferStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TransferType classifies why stock is moving.
type TransferType string

const (
	TypeReplenishment TransferType = "replenishment"
	TypeEmergency     TransferType = "emergency"
	TypeReturn        TransferType = "return"
	TypeRebalance     TransferType = "rebalance"
)

// TransferPriority ranks transfer urgency.
type TransferPriority string

const (
	PriorityNormal   TransferPriority = "normal"
	PriorityUrgent   TransferPriority = "urgent"
	PriorityCritical TransferPriority = "critical"
)

// TransferRequest represents inventory_transfer table: one stock movement
// between two locations. Aggregate root owning line items and damage records.
type TransferRequest struct {
	TransferID     uint             `gorm:"column:transfer_id;primaryKey;autoIncrement" json:"transfer_id"`
	TransferNumber string           `gorm:"column:transfer_number;type:varchar(40);not null;uniqueIndex" json:"transfer_number"`
	SourceID       uint             `gorm:"column:source_location_id;not null;index" json:"source_location_id"`
	DestinationID  uint             `gorm:"column:destination_location_id;not null;index" json:"destination_location_id"`
	Status         TransferStatus   `gorm:"column:status;type:varchar(16);not null;default:pending;index" json:"status"`
	Type           TransferType     `gorm:"column:transfer_type;type:varchar(16);not null;default:replenishment" json:"transfer_type"`
	Priority       TransferPriority `gorm:"column:priority;type:varchar(16);not null;default:normal" json:"priority"`

	RequestedBy string  `gorm:"column:requested_by;type:varchar(64);not null" json:"requested_by"`
	ApprovedBy  *string `gorm:"column:approved_by;type:varchar(64)" json:"approved_by,omitempty"`
	ShippedBy   *string `gorm:"column:shipped_by;type:varchar(64)" json:"shipped_by,omitempty"`
	ReceivedBy  *string `gorm:"column:received_by;type:varchar(64)" json:"received_by,omitempty"`

	RequestedAt   time.Time  `gorm:"column:requested_at;not null;autoCreateTime" json:"requested_at"`
	ApprovedAt    *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ShippedAt     *time.Time `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	ExpectedAt    *time.Time `gorm:"column:expected_at" json:"expected_at,omitempty"`
	ReceivedAt    *time.Time `gorm:"column:received_at" json:"received_at,omitempty"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason  string     `gorm:"column:cancel_reason;type:varchar(255)" json:"cancel_reason,omitempty"`
	Notes         string     `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ReconcileNote string     `gorm:"column:reconcile_note;type:text" json:"reconcile_note,omitempty"`

	Items   []TransferLineItem `gorm:"foreignKey:TransferID" json:"items"`
	Damages []DamageRecord     `gorm:"foreignKey:TransferID" json:"damages,omitempty"`
}

func (TransferRequest) TableName() string {
	return "inventory_transfer"
}

// TransferLineItem represents inventory_transfer_item table: one product
// line within a transfer. Shipped/received/damaged stay nil until the
// corresponding transition fills them in.
type TransferLineItem struct {
	ItemID       uint            `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id"`
	TransferID   uint            `gorm:"column:transfer_id;not null;uniqueIndex:idx_transfer_item_product" json:"transfer_id"`
	ProductID    uint            `gorm:"column:product_id;not null;uniqueIndex:idx_transfer_item_product" json:"product_id"`
	RequestedQty int             `gorm:"column:requested_qty;not null" json:"requested_qty"`
	ShippedQty   *int            `gorm:"column:shipped_qty" json:"shipped_qty,omitempty"`
	ReceivedQty  *int            `gorm:"column:received_qty" json:"received_qty,omitempty"`
	DamagedQty   *int            `gorm:"column:damaged_qty" json:"damaged_qty,omitempty"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,4);not null;default:0" json:"unit_cost"`
	Notes        string          `gorm:"column:notes;type:varchar(255)" json:"notes,omitempty"`
}

func (TransferLineItem) TableName() string {
	return "inventory_transfer_item"
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FullyShipped reports whether the line shipped its full requested quantity.
func (i *TransferLineItem) FullyShipped() bool {
	return i.ShippedQty != nil && *i.ShippedQty == i.RequestedQty
}

// FullyReceived reports whether every shipped unit was received intact.
func (i *TransferLineItem) FullyReceived() bool {
	return i.ShippedQty != nil && i.ReceivedQty != nil && *i.ReceivedQty == *i.ShippedQty
}

// HasDiscrepancy reports shrinkage: received+damaged short of shipped.
func (i *TransferLineItem) HasDiscrepancy() bool {
	if i.ShippedQty == nil {
		return false
	}
	return intOrZero(i.ReceivedQty)+intOrZero(i.DamagedQty) < *i.ShippedQty
}

// MissingQty is the unaccounted remainder (shipped - received - damaged).
func (i *TransferLineItem) MissingQty() int {
	if i.ShippedQty == nil {
		return 0
	}
	m := *i.ShippedQty - intOrZero(i.ReceivedQty) - intOrZero(i.DamagedQty)
	if m < 0 {
		return 0
	}
	return m
}

// ReceivedValue is received qty × unit cost.
func (i *TransferLineItem) ReceivedValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(intOrZero(i.ReceivedQty))))
}

// DamageValue is damaged qty × unit cost.
func (i *TransferLineItem) DamageValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(intOrZero(i.DamagedQty))))
}

// --- Derived aggregate totals ---

// TotalRequestedQty sums requested units across lines.
func (t *TransferRequest) TotalRequestedQty() int {
	total := 0
	for i := range t.Items {
		total += t.Items[i].RequestedQty
	}
	return total
}

// TotalShippedQty sums shipped units across lines.
func (t *TransferRequest) TotalShippedQty() int {
	total := 0
	for i := range t.Items {
		total += intOrZero(t.Items[i].ShippedQty)
	}
	return total
}

// TotalReceivedQty sums received units across lines.
func (t *TransferRequest) TotalReceivedQty() int {
	total := 0
	for i := range t.Items {
		total += intOrZero(t.Items[i].ReceivedQty)
	}
	return total
}

// TotalDamagedQty sums damaged units across lines.
func (t *TransferRequest) TotalDamagedQty() int {
	total := 0
	for i := range t.Items {
		total += intOrZero(t.Items[i].DamagedQty)
	}
	return total
}

// TotalValue is the sum of requested qty × unit cost across lines.
func (t *TransferRequest) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for i := range t.Items {
		line := t.Items[i].UnitCost.Mul(decimal.NewFromInt(int64(t.Items[i].RequestedQty)))
		total = total.Add(line)
	}
	return total
}

// IsOverdue reports whether the expected delivery date passed while the
// transfer is still on the road.
func (t *TransferRequest) IsOverdue(now time.Time) bool {
	return t.Status == StatusInTransit && t.ExpectedAt != nil && now.After(*t.ExpectedAt)
}

// IsUrgent reports urgent or critical priority.
func (t *TransferRequest) IsUrgent() bool {
	return t.Priority == PriorityUrgent || t.Priority == PriorityCritical
}

// HasDiscrepancies reports whether any line came up short.
func (t *TransferRequest) HasDiscrepancies() bool {
	for i := range t.Items {
		if t.Items[i].HasDiscrepancy() {
			return true
		}
	}
	return false
}

// LineFor returns the line item for a product, nil if absent.
func (t *TransferRequest) LineFor(productID uint) *TransferLineItem {
	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			return &t.Items[i]
		}
	}
	return nil
}
