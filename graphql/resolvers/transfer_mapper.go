package resolvers

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	gqlmodels "retail.GO/graphql/models"
	inventoryEntity "retail.GO/model/entity/inventory"
)

// Decode hooks bridge entity value types (time.Time, decimal.Decimal, int)
// to the graphql model's string/int32 fields.

func timeToStringHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.String {
			return data, nil
		}
		switch v := data.(type) {
		case time.Time:
			return v.Format(time.RFC3339), nil
		case *time.Time:
			if v == nil {
				return "", nil
			}
			return v.Format(time.RFC3339), nil
		}
		return data, nil
	}
}

func decimalToStringHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.String {
			return data, nil
		}
		if d, ok := data.(decimal.Decimal); ok {
			return d.StringFixed(4), nil
		}
		return data, nil
	}
}

func numberToInt32Hook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Int32 {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return int32(v), nil
		case uint:
			return int32(v), nil
		case int64:
			return int32(v), nil
		}
		return data, nil
	}
}

var transferDecodeHook = mapstructure.ComposeDecodeHookFunc(
	timeToStringHook(),
	decimalToStringHook(),
	numberToInt32Hook(),
)

// entityToTransfer flattens a transfer aggregate (with derived totals) into
// the graphql model.
func entityToTransfer(t *inventoryEntity.TransferRequest) (*gqlmodels.Transfer, error) {
	items := make([]map[string]interface{}, 0, len(t.Items))
	for i := range t.Items {
		line := &t.Items[i]
		items = append(items, map[string]interface{}{
			"product_id":    line.ProductID,
			"requested_qty": line.RequestedQty,
			"shipped_qty":   line.ShippedQty,
			"received_qty":  line.ReceivedQty,
			"damaged_qty":   line.DamagedQty,
			"unit_cost":     line.UnitCost,
			"notes":         nilIfEmpty(line.Notes),
		})
	}

	flat := map[string]interface{}{
		"transfer_id":             t.TransferID,
		"transfer_number":         t.TransferNumber,
		"source_location_id":      t.SourceID,
		"destination_location_id": t.DestinationID,
		"status":                  string(t.Status),
		"type":                    string(t.Type),
		"priority":                string(t.Priority),
		"requested_by":            t.RequestedBy,
		"requested_at":            t.RequestedAt,
		"expected_at":             t.ExpectedAt,
		"cancel_reason":           nilIfEmpty(t.CancelReason),
		"reconcile_note":          nilIfEmpty(t.ReconcileNote),
		"total_requested_qty":     t.TotalRequestedQty(),
		"total_shipped_qty":       t.TotalShippedQty(),
		"total_received_qty":      t.TotalReceivedQty(),
		"total_damaged_qty":       t.TotalDamagedQty(),
		"total_value":             t.TotalValue(),
		"is_overdue":              t.IsOverdue(time.Now()),
		"is_urgent":               t.IsUrgent(),
		"has_discrepancies":       t.HasDiscrepancies(),
		"items":                   items,
	}

	var out gqlmodels.Transfer
	cfg := &mapstructure.DecoderConfig{
		DecodeHook: transferDecodeHook,
		Result:     &out,
		TagName:    "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(flat); err != nil {
		return nil, fmt.Errorf("mapping transfer %d: %w", t.TransferID, err)
	}
	return &out, nil
}

func entityToLedgerEntry(e *inventoryEntity.StockLedgerEntry) (*gqlmodels.LedgerEntry, error) {
	flat := map[string]interface{}{
		"location_id":    e.LocationID,
		"product_id":     e.ProductID,
		"qty_on_hand":    e.QtyOnHand,
		"qty_in_transit": e.QtyInTransit,
		"reorder_point":  e.ReorderPoint,
		"unit_cost":      e.UnitCost,
	}
	var out gqlmodels.LedgerEntry
	cfg := &mapstructure.DecoderConfig{
		DecodeHook: transferDecodeHook,
		Result:     &out,
		TagName:    "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(flat); err != nil {
		return nil, err
	}
	return &out, nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
