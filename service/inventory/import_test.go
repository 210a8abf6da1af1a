package inventory

import (
	"strings"
	"testing"

	inventoryEntity "retail.GO/model/entity/inventory"
)

func TestImportLedgerJSON(t *testing.T) {
	db := testDB(t)

	res, err := ImportLedgerJSON(db, []LedgerItemInput{
		{LocationID: 1, ProductID: 1, QtyOnHand: 100, ReorderPoint: 10, UnitCost: 2.5},
		{LocationID: 1, ProductID: 2, QtyOnHand: 50},
	}, 0)
	if err != nil {
		t.Fatalf("ImportLedgerJSON: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("imported/skipped = %d/%d, want 2/0", res.Imported, res.Skipped)
	}

	var entry inventoryEntity.StockLedgerEntry
	if err := db.Where("location_id = ? AND product_id = ?", 1, 1).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.QtyOnHand != 100 || entry.ReorderPoint != 10 {
		t.Errorf("entry = qty %d reorder %d, want 100/10", entry.QtyOnHand, entry.ReorderPoint)
	}
}

func TestImportLedgerJSON_Upsert(t *testing.T) {
	db := testDB(t)

	if _, err := ImportLedgerJSON(db, []LedgerItemInput{
		{LocationID: 1, ProductID: 1, QtyOnHand: 100},
	}, 0); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := ImportLedgerJSON(db, []LedgerItemInput{
		{LocationID: 1, ProductID: 1, QtyOnHand: 40, ReorderPoint: 5},
	}, 0); err != nil {
		t.Fatalf("second import: %v", err)
	}

	var entry inventoryEntity.StockLedgerEntry
	db.Where("location_id = ? AND product_id = ?", 1, 1).First(&entry)
	if entry.QtyOnHand != 40 || entry.ReorderPoint != 5 {
		t.Errorf("entry = qty %d reorder %d, want 40/5 after upsert", entry.QtyOnHand, entry.ReorderPoint)
	}

	var count int64
	db.Model(&inventoryEntity.StockLedgerEntry{}).Count(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestImportLedgerJSON_SkipsInvalidRows(t *testing.T) {
	db := testDB(t)

	res, err := ImportLedgerJSON(db, []LedgerItemInput{
		{LocationID: 0, ProductID: 1, QtyOnHand: 10},
		{LocationID: 1, ProductID: 1, QtyOnHand: -5},
		{LocationID: 1, ProductID: 2, QtyOnHand: 7},
	}, 0)
	if err != nil {
		t.Fatalf("ImportLedgerJSON: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 2 {
		t.Errorf("imported/skipped = %d/%d, want 1/2", res.Imported, res.Skipped)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %d, want 2", len(res.Warnings))
	}
}

func TestImportLedgerCSV(t *testing.T) {
	db := testDB(t)

	csv := strings.Join([]string{
		"location_id,product_id,qty_on_hand,reorder_point,unit_cost",
		"1,1,100,10,2.50",
		"1,2,50,0,1.00",
		"2,1,30,5,2.50",
	}, "\n")

	res, err := ImportLedgerCSV(db, strings.NewReader(csv), 0)
	if err != nil {
		t.Fatalf("ImportLedgerCSV: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("imported = %d, want 3", res.Imported)
	}

	var entry inventoryEntity.StockLedgerEntry
	db.Where("location_id = ? AND product_id = ?", 2, 1).First(&entry)
	if entry.QtyOnHand != 30 || entry.ReorderPoint != 5 {
		t.Errorf("entry = qty %d reorder %d, want 30/5", entry.QtyOnHand, entry.ReorderPoint)
	}
}

func TestImportLedgerCSV_MissingColumn(t *testing.T) {
	db := testDB(t)

	csv := "location_id,product_id\n1,1\n"
	if _, err := ImportLedgerCSV(db, strings.NewReader(csv), 0); err == nil {
		t.Error("err = nil, want missing column error")
	}
}
