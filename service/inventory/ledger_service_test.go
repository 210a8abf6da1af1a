package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "retail.GO/model/entity"
	inventoryEntity "retail.GO/model/entity/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("inventory_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(
		&entity.Product{},
		&entity.Location{},
		&inventoryEntity.StockLedgerEntry{},
		&inventoryEntity.TransferRequest{},
		&inventoryEntity.TransferLineItem{},
		&inventoryEntity.DamageRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	locations := []entity.Location{
		{Code: "WH-1", Name: "Central Warehouse", Kind: "warehouse", IsActive: true},
		{Code: "SHOP-1", Name: "Downtown Shop", Kind: "shop", IsActive: true},
		{Code: "SHOP-2", Name: "Mall Shop", Kind: "shop", IsActive: true},
	}
	for i := range locations {
		if err := db.Create(&locations[i]).Error; err != nil {
			t.Fatalf("seed location: %v", err)
		}
	}
	products := []entity.Product{
		{SKU: "SKU-001", Name: "Widget", UnitOfMeasure: "pcs", IsActive: true},
		{SKU: "SKU-002", Name: "Gadget", UnitOfMeasure: "pcs", IsActive: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
}

func TestStockLedger_AddStockCreatesRow(t *testing.T) {
	db := testDB(t)
	ledger, err := NewStockLedgerService(db)
	if err != nil {
		t.Fatalf("NewStockLedgerService: %v", err)
	}

	entry, err := ledger.AddStock(1, 1, 25)
	if err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if entry.QtyOnHand != 25 {
		t.Errorf("QtyOnHand = %d, want 25", entry.QtyOnHand)
	}

	entry, err = ledger.AddStock(1, 1, 5)
	if err != nil {
		t.Fatalf("AddStock second: %v", err)
	}
	if entry.QtyOnHand != 30 {
		t.Errorf("QtyOnHand = %d, want 30", entry.QtyOnHand)
	}
}

func TestStockLedger_AddStockRejectsNonPositive(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	var validation *ValidationError
	if _, err := ledger.AddStock(1, 1, 0); !errors.As(err, &validation) {
		t.Errorf("AddStock(0) err = %v, want ValidationError", err)
	}
	if _, err := ledger.AddStock(1, 1, -3); !errors.As(err, &validation) {
		t.Errorf("AddStock(-3) err = %v, want ValidationError", err)
	}
}

func TestStockLedger_ReduceStock(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	if _, err := ledger.AddStock(1, 1, 10); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	entry, err := ledger.ReduceStock(1, 1, 4)
	if err != nil {
		t.Fatalf("ReduceStock: %v", err)
	}
	if entry.QtyOnHand != 6 {
		t.Errorf("QtyOnHand = %d, want 6", entry.QtyOnHand)
	}
}

func TestStockLedger_ReduceStockInsufficient(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	if _, err := ledger.AddStock(1, 1, 3); err != nil {
		t.Fatalf("AddStock: %v", err)
	}

	var insufficient *InsufficientStockError
	_, err := ledger.ReduceStock(1, 1, 5)
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.Available != 3 || insufficient.Requested != 5 {
		t.Errorf("available/requested = %d/%d, want 3/5", insufficient.Available, insufficient.Requested)
	}

	// Failed reduction leaves the row untouched.
	entry, err := ledger.GetEntry(1, 1)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if entry.QtyOnHand != 3 {
		t.Errorf("QtyOnHand = %d, want 3", entry.QtyOnHand)
	}
}

func TestStockLedger_ReduceStockMissingRow(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	var notFound *NotFoundError
	if _, err := ledger.ReduceStock(9, 9, 1); !errors.As(err, &notFound) {
		t.Errorf("err = %v, want NotFoundError", err)
	}
}

func TestStockLedger_GetEntryMissingRow(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	var notFound *NotFoundError
	if _, err := ledger.GetEntry(9, 9); !errors.As(err, &notFound) {
		t.Errorf("err = %v, want NotFoundError", err)
	}
}

func TestStockLedger_IsInStock(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	if ledger.IsInStock(1, 1, 1) {
		t.Error("IsInStock on missing row = true, want false")
	}
	ledger.AddStock(1, 1, 10)
	if !ledger.IsInStock(1, 1, 10) {
		t.Error("IsInStock(10 of 10) = false, want true")
	}
	if ledger.IsInStock(1, 1, 11) {
		t.Error("IsInStock(11 of 10) = true, want false")
	}
}

func TestStockLedger_ConcurrentAdds(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.AddStock(1, 1, 1); err != nil {
				t.Errorf("AddStock: %v", err)
			}
		}()
	}
	wg.Wait()

	entry, err := ledger.GetEntry(1, 1)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if entry.QtyOnHand != workers {
		t.Errorf("QtyOnHand = %d, want %d", entry.QtyOnHand, workers)
	}
}

func TestStockLedger_ConcurrentReducesNeverGoNegative(t *testing.T) {
	db := testDB(t)
	ledger, _ := NewStockLedgerService(db)
	ledger.AddStock(1, 1, 5)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ReduceStock(1, 1, 1)
			mu.Lock()
			defer mu.Unlock()
			var insufficient *InsufficientStockError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &insufficient):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 || rejected != 5 {
		t.Errorf("succeeded/rejected = %d/%d, want 5/5", succeeded, rejected)
	}
	entry, _ := ledger.GetEntry(1, 1)
	if entry.QtyOnHand != 0 {
		t.Errorf("QtyOnHand = %d, want 0", entry.QtyOnHand)
	}
}
