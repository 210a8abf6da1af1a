package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryEntity "retail.GO/model/entity/inventory"
)

// LedgerItemInput is one row of a bulk ledger upsert.
type LedgerItemInput struct {
	LocationID   uint    `json:"location_id"`
	ProductID    uint    `json:"product_id"`
	QtyOnHand    int     `json:"qty_on_hand"`
	ReorderPoint int     `json:"reorder_point"`
	MinQty       int     `json:"min_qty"`
	MaxQty       int     `json:"max_qty"`
	UnitCost     float64 `json:"unit_cost"`
}

// ImportResult reports a bulk import outcome.
type ImportResult struct {
	Imported int
	Skipped  int
	Warnings []string
}

const defaultImportBatch = 500

// ImportLedgerJSON bulk-upserts ledger rows keyed on (location, product).
// Rows with non-positive ids or negative quantities are skipped with a
// warning rather than aborting the batch.
func ImportLedgerJSON(db *gorm.DB, items []LedgerItemInput, batchSize int) (*ImportResult, error) {
	if batchSize <= 0 {
		batchSize = defaultImportBatch
	}
	res := &ImportResult{}

	var rows []inventoryEntity.StockLedgerEntry
	for _, in := range items {
		if in.LocationID == 0 || in.ProductID == 0 {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("location=%d product=%d: missing ids", in.LocationID, in.ProductID))
			continue
		}
		if in.QtyOnHand < 0 {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("location=%d product=%d: negative qty %d", in.LocationID, in.ProductID, in.QtyOnHand))
			continue
		}
		rows = append(rows, inventoryEntity.StockLedgerEntry{
			LocationID:   in.LocationID,
			ProductID:    in.ProductID,
			QtyOnHand:    in.QtyOnHand,
			ReorderPoint: in.ReorderPoint,
			MinQty:       in.MinQty,
			MaxQty:       in.MaxQty,
			UnitCost:     decimal.NewFromFloat(in.UnitCost),
		})
	}

	if len(rows) == 0 {
		return res, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "location_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"qty_on_hand", "reorder_point", "min_qty", "max_qty", "unit_cost",
			}),
		}).CreateInBatches(rows, batchSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("flushing ledger rows: %w", err)
	}
	res.Imported = len(rows)
	return res, nil
}

// ImportLedgerCSV parses "location_id,product_id,qty_on_hand[,reorder_point,
// min_qty,max_qty,unit_cost]" rows (header required) and delegates to
// ImportLedgerJSON.
func ImportLedgerCSV(db *gorm.DB, r io.Reader, batchSize int) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"location_id", "product_id", "qty_on_hand"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("CSV missing required column %q", required)
		}
	}

	var items []LedgerItemInput
	var warnings []string
	lineNo := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}

		intCol := func(name string) int {
			ci, ok := colIndex[name]
			if !ok || ci >= len(row) {
				return 0
			}
			v, _ := strconv.Atoi(strings.TrimSpace(row[ci]))
			return v
		}
		floatCol := func(name string) float64 {
			ci, ok := colIndex[name]
			if !ok || ci >= len(row) {
				return 0
			}
			v, _ := strconv.ParseFloat(strings.TrimSpace(row[ci]), 64)
			return v
		}

		items = append(items, LedgerItemInput{
			LocationID:   uint(intCol("location_id")),
			ProductID:    uint(intCol("product_id")),
			QtyOnHand:    intCol("qty_on_hand"),
			ReorderPoint: intCol("reorder_point"),
			MinQty:       intCol("min_qty"),
			MaxQty:       intCol("max_qty"),
			UnitCost:     floatCol("unit_cost"),
		})
	}

	res, err := ImportLedgerJSON(db, items, batchSize)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	return res, nil
}
