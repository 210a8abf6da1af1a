package models

// Transfer is the graphql view of a transfer aggregate. Fields resolve via
// UseFieldResolvers; derived totals are precomputed by the mapper.
type Transfer struct {
	TransferID            int32   `json:"transfer_id" mapstructure:"transfer_id"`
	TransferNumber        string  `json:"transfer_number" mapstructure:"transfer_number"`
	SourceLocationID      int32   `json:"source_location_id" mapstructure:"source_location_id"`
	DestinationLocationID int32   `json:"destination_location_id" mapstructure:"destination_location_id"`
	Status                string  `json:"status" mapstructure:"status"`
	Type                  string  `json:"type" mapstructure:"type"`
	Priority              string  `json:"priority" mapstructure:"priority"`
	RequestedBy           string  `json:"requested_by" mapstructure:"requested_by"`
	RequestedAt           string  `json:"requested_at" mapstructure:"requested_at"`
	ExpectedAt            *string `json:"expected_at,omitempty" mapstructure:"expected_at"`
	CancelReason          *string `json:"cancel_reason,omitempty" mapstructure:"cancel_reason"`
	ReconcileNote         *string `json:"reconcile_note,omitempty" mapstructure:"reconcile_note"`

	TotalRequestedQty int32  `json:"total_requested_qty" mapstructure:"total_requested_qty"`
	TotalShippedQty   int32  `json:"total_shipped_qty" mapstructure:"total_shipped_qty"`
	TotalReceivedQty  int32  `json:"total_received_qty" mapstructure:"total_received_qty"`
	TotalDamagedQty   int32  `json:"total_damaged_qty" mapstructure:"total_damaged_qty"`
	TotalValue        string `json:"total_value" mapstructure:"total_value"`
	IsOverdue         bool   `json:"is_overdue" mapstructure:"is_overdue"`
	IsUrgent          bool   `json:"is_urgent" mapstructure:"is_urgent"`
	HasDiscrepancies  bool   `json:"has_discrepancies" mapstructure:"has_discrepancies"`

	Items []*TransferItem `json:"items" mapstructure:"items"`
}

type TransferItem struct {
	ProductID    int32   `json:"product_id" mapstructure:"product_id"`
	RequestedQty int32   `json:"requested_qty" mapstructure:"requested_qty"`
	ShippedQty   *int32  `json:"shipped_qty,omitempty" mapstructure:"shipped_qty"`
	ReceivedQty  *int32  `json:"received_qty,omitempty" mapstructure:"received_qty"`
	DamagedQty   *int32  `json:"damaged_qty,omitempty" mapstructure:"damaged_qty"`
	UnitCost     string  `json:"unit_cost" mapstructure:"unit_cost"`
	Notes        *string `json:"notes,omitempty" mapstructure:"notes"`
}

type LedgerEntry struct {
	LocationID   int32  `json:"location_id" mapstructure:"location_id"`
	ProductID    int32  `json:"product_id" mapstructure:"product_id"`
	QtyOnHand    int32  `json:"qty_on_hand" mapstructure:"qty_on_hand"`
	QtyInTransit int32  `json:"qty_in_transit" mapstructure:"qty_in_transit"`
	ReorderPoint int32  `json:"reorder_point" mapstructure:"reorder_point"`
	UnitCost     string `json:"unit_cost" mapstructure:"unit_cost"`
}

type TransferList struct {
	Items      []*Transfer `json:"items"`
	TotalCount int32       `json:"total_count"`
	PageInfo   *PageInfo   `json:"page_info"`
}

type PageInfo struct {
	PageSize    int32 `json:"page_size"`
	CurrentPage int32 `json:"current_page"`
	TotalPages  int32 `json:"total_pages"`
}
