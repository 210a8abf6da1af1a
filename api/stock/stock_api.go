package stock

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"retail.GO/api"
	inventoryEntity "retail.GO/model/entity/inventory"
	inventoryRepo "retail.GO/model/repository/inventory"
	inventoryService "retail.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

// RegisterStockRoutes mounts the stock ledger endpoints on /api/stock.
func RegisterStockRoutes(apiGroup *echo.Group, db *gorm.DB) {
	ledger, err := inventoryService.NewStockLedgerService(db)
	if err != nil {
		log.Printf("stock API disabled: %v", err)
		return
	}
	repo, err := inventoryRepo.NewLedgerRepository(db)
	if err != nil {
		log.Printf("stock API disabled: %v", err)
		return
	}

	g := apiGroup.Group("/stock")

	g.GET("/:locationId/:productId", func(c echo.Context) error {
		locationID, productID, err := parseKey(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		entry, err := ledger.GetEntry(locationID, productID)
		if err != nil {
			return ledgerError(c, err)
		}
		return c.JSON(http.StatusOK, entry)
	})

	g.GET("/check", func(c echo.Context) error {
		locationID, _ := strconv.ParseUint(c.QueryParam("location_id"), 10, 32)
		productID, _ := strconv.ParseUint(c.QueryParam("product_id"), 10, 32)
		qty, _ := strconv.Atoi(c.QueryParam("qty"))
		if locationID == 0 || productID == 0 || qty <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "location_id, product_id and positive qty are required"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"in_stock": ledger.IsInStock(uint(locationID), uint(productID), qty),
		})
	})

	g.POST("/add", func(c echo.Context) error {
		return mutate(c, ledger.AddStock)
	})

	g.POST("/reduce", func(c echo.Context) error {
		return mutate(c, ledger.ReduceStock)
	})

	g.GET("/reorder", func(c echo.Context) error {
		locationID, _ := strconv.ParseUint(c.QueryParam("location_id"), 10, 32)
		entries, err := repo.FindBelowReorder(uint(locationID))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": entries})
	})

	// POST /api/stock/import – bulk ledger upsert
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			Items     []inventoryService.LedgerItemInput `json:"items"`
			BatchSize int                                `json:"batch_size"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Items) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items array is required and must not be empty"})
		}

		res, err := inventoryService.ImportLedgerJSON(db, body.Items, body.BatchSize)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"imported":            res.Imported,
			"skipped":             res.Skipped,
			"warnings":            res.Warnings,
			"request_duration_ms": duration,
		})
	})
}

type ledgerMutation func(locationID, productID uint, qty int) (*inventoryEntity.StockLedgerEntry, error)

func mutate(c echo.Context, apply ledgerMutation) error {
	var body struct {
		LocationID uint `json:"location_id"`
		ProductID  uint `json:"product_id"`
		Qty        int  `json:"qty"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	entry, err := apply(body.LocationID, body.ProductID, body.Qty)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

func parseKey(c echo.Context) (uint, uint, error) {
	locationID, err := strconv.ParseUint(c.Param("locationId"), 10, 32)
	if err != nil {
		return 0, 0, errors.New("invalid location id")
	}
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		return 0, 0, errors.New("invalid product id")
	}
	return uint(locationID), uint(productID), nil
}

func ledgerError(c echo.Context, err error) error {
	var notFound *inventoryService.NotFoundError
	var validation *inventoryService.ValidationError
	var insufficient *inventoryService.InsufficientStockError

	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      err.Error(),
			"product_id": insufficient.ProductID,
			"available":  insufficient.Available,
			"requested":  insufficient.Requested,
		})
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		log.Printf("stock API internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
