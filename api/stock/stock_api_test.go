package stock

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	inventoryEntity "retail.GO/model/entity/inventory"
)

const (
	testUser = "admin"
	testPass = "secret"
)

func stockTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("stock_api_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(&inventoryEntity.StockLedgerEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func stockTestServer(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == testUser && pass == testPass, nil
	}))
	RegisterStockRoutes(apiGroup, db)
	return e
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func doStockRequest(e *echo.Echo, method, path string, body interface{}, auth string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ---------- Auth ----------

func TestStockAPI_NoAuth_Returns401(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	rec := doStockRequest(e, http.MethodPost, "/api/stock/add", map[string]interface{}{
		"location_id": 1, "product_id": 1, "qty": 5,
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// ---------- Mutations ----------

func TestStockAPI_AddAndGet(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)
	auth := basicAuth(testUser, testPass)

	rec := doStockRequest(e, http.MethodPost, "/api/stock/add", map[string]interface{}{
		"location_id": 1, "product_id": 1, "qty": 25,
	}, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body: %s", rec.Code, rec.Body.String())
	}

	rec = doStockRequest(e, http.MethodGet, "/api/stock/1/1", nil, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var entry map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&entry)
	if entry["qty_on_hand"] != float64(25) {
		t.Errorf("qty_on_hand = %v, want 25", entry["qty_on_hand"])
	}
}

func TestStockAPI_AddNonPositiveQty_Returns400(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	rec := doStockRequest(e, http.MethodPost, "/api/stock/add", map[string]interface{}{
		"location_id": 1, "product_id": 1, "qty": 0,
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStockAPI_ReduceInsufficient_Returns409(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)
	auth := basicAuth(testUser, testPass)

	doStockRequest(e, http.MethodPost, "/api/stock/add", map[string]interface{}{
		"location_id": 1, "product_id": 1, "qty": 3,
	}, auth)

	rec := doStockRequest(e, http.MethodPost, "/api/stock/reduce", map[string]interface{}{
		"location_id": 1, "product_id": 1, "qty": 10,
	}, auth)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["available"] != float64(3) || resp["requested"] != float64(10) {
		t.Errorf("available/requested = %v/%v, want 3/10", resp["available"], resp["requested"])
	}
}

func TestStockAPI_ReduceMissingRow_Returns404(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	rec := doStockRequest(e, http.MethodPost, "/api/stock/reduce", map[string]interface{}{
		"location_id": 9, "product_id": 9, "qty": 1,
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStockAPI_GetMissingRow_Returns404(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	rec := doStockRequest(e, http.MethodGet, "/api/stock/9/9", nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// ---------- Checks and reports ----------

func TestStockAPI_Check(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)
	auth := basicAuth(testUser, testPass)

	doStockRequest(e, http.MethodPost, "/api/stock/add", map[string]interface{}{
		"location_id": 1, "product_id": 1, "qty": 10,
	}, auth)

	rec := doStockRequest(e, http.MethodGet, "/api/stock/check?location_id=1&product_id=1&qty=10", nil, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["in_stock"] != true {
		t.Errorf("in_stock = %v, want true", resp["in_stock"])
	}

	rec = doStockRequest(e, http.MethodGet, "/api/stock/check?location_id=1&product_id=1&qty=11", nil, auth)
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["in_stock"] != false {
		t.Errorf("in_stock = %v, want false", resp["in_stock"])
	}
}

func TestStockAPI_CheckMissingParams_Returns400(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	rec := doStockRequest(e, http.MethodGet, "/api/stock/check?location_id=1", nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStockAPI_ReorderReport(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	db.Create(&inventoryEntity.StockLedgerEntry{LocationID: 1, ProductID: 1, QtyOnHand: 2, ReorderPoint: 5})
	db.Create(&inventoryEntity.StockLedgerEntry{LocationID: 1, ProductID: 2, QtyOnHand: 50, ReorderPoint: 5})

	rec := doStockRequest(e, http.MethodGet, "/api/stock/reorder?location_id=1", nil, basicAuth(testUser, testPass))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&resp)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

// ---------- Import ----------

func TestStockAPI_Import(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"location_id": 1, "product_id": 1, "qty_on_hand": 100},
			{"location_id": 0, "product_id": 2, "qty_on_hand": 5},
		},
	}
	rec := doStockRequest(e, http.MethodPost, "/api/stock/import", body, basicAuth(testUser, testPass))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["imported"] != float64(1) || resp["skipped"] != float64(1) {
		t.Errorf("imported/skipped = %v/%v, want 1/1", resp["imported"], resp["skipped"])
	}
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Error("missing X-Request-Duration-ms header")
	}
	if resp["request_duration_ms"] == nil {
		t.Error("missing request_duration_ms in response body")
	}
}

func TestStockAPI_ImportEmptyItems_Returns400(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	rec := doStockRequest(e, http.MethodPost, "/api/stock/import", map[string]interface{}{
		"items": []map[string]interface{}{},
	}, basicAuth(testUser, testPass))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStockAPI_ImportInvalidJSON_Returns400(t *testing.T) {
	db := stockTestDB(t)
	e := stockTestServer(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/stock/import", bytes.NewReader([]byte("{invalid")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", basicAuth(testUser, testPass))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
