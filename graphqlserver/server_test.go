package graphqlserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	inventoryEntity "retail.GO/model/entity/inventory"
)

func serverTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("gqlserver_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	if err := db.AutoMigrate(
		&inventoryEntity.StockLedgerEntry{},
		&inventoryEntity.TransferRequest{},
		&inventoryEntity.TransferLineItem{},
		&inventoryEntity.DamageRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type gqlResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func runQuery(t *testing.T, db *gorm.DB, query string) gqlResponse {
	t.Helper()
	schema, err := NewSchema(db)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	h := Handler(schema)

	body, _ := json.Marshal(map[string]interface{}{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp gqlResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestGraphQL_SchemaParses(t *testing.T) {
	db := serverTestDB(t)
	if _, err := NewSchema(db); err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
}

func TestGraphQL_TransferByNumber(t *testing.T) {
	db := serverTestDB(t)
	shipped := 10
	tr := inventoryEntity.TransferRequest{
		TransferNumber: "TRF-GQL-1",
		SourceID:       1,
		DestinationID:  2,
		Status:         inventoryEntity.StatusInTransit,
		Type:           inventoryEntity.TypeReplenishment,
		Priority:       inventoryEntity.PriorityNormal,
		RequestedBy:    "alice",
		Items: []inventoryEntity.TransferLineItem{
			{ProductID: 1, RequestedQty: 10, ShippedQty: &shipped},
		},
	}
	if err := db.Create(&tr).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := runQuery(t, db, `query {
		transfer(number: "TRF-GQL-1") {
			transferNumber
			status
			totalShippedQty
			items { productId requestedQty }
		}
	}`)
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	transfer, ok := resp.Data["transfer"].(map[string]interface{})
	if !ok {
		t.Fatalf("data.transfer missing: %v", resp.Data)
	}
	if transfer["status"] != "in_transit" {
		t.Errorf("status = %v, want in_transit", transfer["status"])
	}
	if transfer["totalShippedQty"] != float64(10) {
		t.Errorf("totalShippedQty = %v, want 10", transfer["totalShippedQty"])
	}
	items := transfer["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}

func TestGraphQL_TransferMissingIsNull(t *testing.T) {
	db := serverTestDB(t)

	resp := runQuery(t, db, `query { transfer(id: 999) { transferNumber } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	if resp.Data["transfer"] != nil {
		t.Errorf("transfer = %v, want null", resp.Data["transfer"])
	}
}

func TestGraphQL_StockLedger(t *testing.T) {
	db := serverTestDB(t)
	db.Create(&inventoryEntity.StockLedgerEntry{LocationID: 1, ProductID: 1, QtyOnHand: 42})

	resp := runQuery(t, db, `query { stockLedger(locationId: 1, productId: 1) { qtyOnHand qtyInTransit } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	entry := resp.Data["stockLedger"].(map[string]interface{})
	if entry["qtyOnHand"] != float64(42) {
		t.Errorf("qtyOnHand = %v, want 42", entry["qtyOnHand"])
	}
}

func TestGraphQL_TransfersByStatus(t *testing.T) {
	db := serverTestDB(t)
	for i := 0; i < 3; i++ {
		tr := inventoryEntity.TransferRequest{
			TransferNumber: fmt.Sprintf("TRF-GQL-%d", i+10),
			SourceID:       1,
			DestinationID:  2,
			Status:         inventoryEntity.StatusPending,
			Type:           inventoryEntity.TypeReplenishment,
			Priority:       inventoryEntity.PriorityNormal,
			RequestedBy:    "alice",
		}
		if err := db.Create(&tr).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	resp := runQuery(t, db, `query {
		transfers(status: "pending", pageSize: 2, currentPage: 1) {
			totalCount
			items { transferNumber }
			pageInfo { totalPages }
		}
	}`)
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	list := resp.Data["transfers"].(map[string]interface{})
	if list["totalCount"] != float64(3) {
		t.Errorf("totalCount = %v, want 3", list["totalCount"])
	}
	if items := list["items"].([]interface{}); len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}
