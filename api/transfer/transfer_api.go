package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"retail.GO/api"
	"retail.GO/config"
	"retail.GO/core/cache"
	inventoryEntity "retail.GO/model/entity/inventory"
	inventoryService "retail.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterTransferRoutes)
}

const aggregateCacheTTL = 30 * time.Second

// RegisterTransferRoutes mounts the transfer engine endpoints on /api/transfers.
func RegisterTransferRoutes(apiGroup *echo.Group, db *gorm.DB) {
	prefix := "TRF"
	if config.AppConfig != nil {
		prefix = config.AppConfig.TransferPrefix
	}
	svc, err := inventoryService.NewTransferService(db, prefix)
	if err != nil {
		log.Printf("transfer API disabled: %v", err)
		return
	}

	g := apiGroup.Group("/transfers")

	g.POST("", func(c echo.Context) error {
		var body struct {
			SourceLocationID      uint    `json:"source_location_id"`
			DestinationLocationID uint    `json:"destination_location_id"`
			RequestedBy           string  `json:"requested_by"`
			Type                  string  `json:"type"`
			Priority              string  `json:"priority"`
			ExpectedAt            *string `json:"expected_at"`
			Notes                 string  `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var expectedAt *time.Time
		if body.ExpectedAt != nil {
			ts, err := time.Parse(time.RFC3339, *body.ExpectedAt)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "expected_at must be RFC3339"})
			}
			expectedAt = &ts
		}
		t, err := svc.Create(inventoryService.CreateTransferInput{
			SourceID:      body.SourceLocationID,
			DestinationID: body.DestinationLocationID,
			RequestedBy:   body.RequestedBy,
			Type:          inventoryEntity.TransferType(body.Type),
			Priority:      inventoryEntity.TransferPriority(body.Priority),
			ExpectedAt:    expectedAt,
			Notes:         body.Notes,
		})
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(http.StatusCreated, aggregateResponse(t))
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		key := fmt.Sprintf("transfer:%d", id)
		if cached, ok := cache.GetInstance().Get(key); ok {
			return c.JSONBlob(http.StatusOK, []byte(cached))
		}

		t, err := svc.FindByID(id)
		if err != nil {
			return domainError(c, err)
		}
		resp := aggregateResponse(t)
		if blob, err := json.Marshal(resp); err == nil {
			cache.GetInstance().Set(key, string(blob), aggregateCacheTTL, key)
		}
		return c.JSON(http.StatusOK, resp)
	})

	g.GET("/number/:number", func(c echo.Context) error {
		t, err := svc.FindByNumber(c.Param("number"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})

	// List: ?status=, ?location_id=&page=&page_size=, ?from=&to=, ?overdue=1
	g.GET("", func(c echo.Context) error {
		switch {
		case c.QueryParam("overdue") != "":
			ts, err := svc.FindOverdue()
			if err != nil {
				return domainError(c, err)
			}
			return c.JSON(http.StatusOK, listResponse(ts, int64(len(ts))))
		case c.QueryParam("status") != "":
			ts, err := svc.FindByStatus(inventoryEntity.TransferStatus(c.QueryParam("status")))
			if err != nil {
				return domainError(c, err)
			}
			return c.JSON(http.StatusOK, listResponse(ts, int64(len(ts))))
		case c.QueryParam("location_id") != "":
			locID, err := strconv.ParseUint(c.QueryParam("location_id"), 10, 32)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location_id"})
			}
			page, _ := strconv.Atoi(c.QueryParam("page"))
			pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
			ts, total, err := svc.FindForLocation(uint(locID), page, pageSize)
			if err != nil {
				return domainError(c, err)
			}
			return c.JSON(http.StatusOK, listResponse(ts, total))
		case c.QueryParam("from") != "" && c.QueryParam("to") != "":
			from, err1 := time.Parse(time.RFC3339, c.QueryParam("from"))
			to, err2 := time.Parse(time.RFC3339, c.QueryParam("to"))
			if err1 != nil || err2 != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339"})
			}
			ts, err := svc.FindByDateRange(from, to)
			if err != nil {
				return domainError(c, err)
			}
			return c.JSON(http.StatusOK, listResponse(ts, int64(len(ts))))
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide one of: status, location_id, from/to, overdue"})
		}
	})

	g.POST("/:id/items", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var body struct {
			ProductID uint    `json:"product_id"`
			Qty       int     `json:"qty"`
			UnitCost  float64 `json:"unit_cost"`
			Notes     string  `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		t, err := svc.AddItem(id, inventoryService.AddItemInput{
			ProductID: body.ProductID,
			Qty:       body.Qty,
			UnitCost:  decimal.NewFromFloat(body.UnitCost),
			Notes:     body.Notes,
		})
		if err != nil {
			return domainError(c, err)
		}
		invalidate(id)
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})

	g.DELETE("/:id/items/:productId", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		t, err := svc.RemoveItem(id, uint(productID))
		if err != nil {
			return domainError(c, err)
		}
		invalidate(id)
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})

	g.POST("/:id/approve", func(c echo.Context) error {
		return transition(c, func(id uint, body actorBody) (*inventoryEntity.TransferRequest, error) {
			return svc.Approve(id, body.Actor)
		})
	})

	g.POST("/:id/ship", func(c echo.Context) error {
		return transition(c, func(id uint, body actorBody) (*inventoryEntity.TransferRequest, error) {
			return svc.Ship(id, body.Actor)
		})
	})

	g.POST("/:id/receive", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var body struct {
			ReceivedBy string `json:"received_by"`
			Items      []struct {
				ProductID   uint   `json:"product_id"`
				ReceivedQty int    `json:"received_qty"`
				DamagedQty  int    `json:"damaged_qty"`
				Notes       string `json:"notes"`
			} `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		receipts := make([]inventoryService.ReceiptInput, 0, len(body.Items))
		for _, it := range body.Items {
			receipts = append(receipts, inventoryService.ReceiptInput{
				ProductID:   it.ProductID,
				ReceivedQty: it.ReceivedQty,
				DamagedQty:  it.DamagedQty,
				Notes:       it.Notes,
			})
		}
		t, err := svc.Receive(id, body.ReceivedBy, receipts)
		if err != nil {
			return domainError(c, err)
		}
		invalidate(id)
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})

	g.POST("/:id/complete", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		t, err := svc.Complete(id)
		if err != nil {
			return domainError(c, err)
		}
		invalidate(id)
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})

	g.POST("/:id/cancel", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		t, err := svc.Cancel(id, body.Reason)
		if err != nil {
			return domainError(c, err)
		}
		invalidate(id)
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})

	g.POST("/:id/damages", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var body struct {
			ProductID      uint            `json:"product_id"`
			Quantity       int             `json:"quantity"`
			Repairable     bool            `json:"repairable"`
			InsuranceClaim bool            `json:"insurance_claim"`
			DamageValue    float64         `json:"damage_value"`
			Detail         json.RawMessage `json:"detail"`
			RecordedBy     string          `json:"recorded_by"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		t, err := svc.RecordDamage(id, inventoryService.DamageInput{
			ProductID:      body.ProductID,
			Quantity:       body.Quantity,
			Repairable:     body.Repairable,
			InsuranceClaim: body.InsuranceClaim,
			DamageValue:    decimal.NewFromFloat(body.DamageValue),
			Detail:         datatypes.JSON(body.Detail),
			RecordedBy:     body.RecordedBy,
		})
		if err != nil {
			return domainError(c, err)
		}
		invalidate(id)
		return c.JSON(http.StatusOK, aggregateResponse(t))
	})
}

type actorBody struct {
	Actor string
}

// transition handles the approve/ship bodies which only carry the actor.
func transition(c echo.Context, apply func(uint, actorBody) (*inventoryEntity.TransferRequest, error)) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var body struct {
		ApprovedBy string `json:"approved_by"`
		ShippedBy  string `json:"shipped_by"`
		Actor      string `json:"actor"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor := body.Actor
	if actor == "" {
		actor = body.ApprovedBy
	}
	if actor == "" {
		actor = body.ShippedBy
	}
	t, err := apply(id, actorBody{Actor: actor})
	if err != nil {
		return domainError(c, err)
	}
	invalidate(id)
	return c.JSON(http.StatusOK, aggregateResponse(t))
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid transfer id %q", c.Param("id"))
	}
	return uint(id), nil
}

func invalidate(transferID uint) {
	cache.GetInstance().InvalidateTag(fmt.Sprintf("transfer:%d", transferID))
}

// domainError maps the engine's typed errors onto HTTP statuses:
// NotFound → 404, InsufficientStock → 409, the rest of the closed set → 400,
// anything else → 500.
func domainError(c echo.Context, err error) error {
	var notFound *inventoryService.NotFoundError
	var validation *inventoryService.ValidationError
	var duplicate *inventoryService.DuplicateLineError
	var insufficient *inventoryService.InsufficientStockError
	var invalidState *inventoryService.InvalidStateError
	var invalidReceipt *inventoryService.InvalidReceiptError

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
	case errors.As(err, &validation), errors.As(err, &duplicate),
		errors.As(err, &invalidState), errors.As(err, &invalidReceipt):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		log.Printf("transfer API internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func aggregateResponse(t *inventoryEntity.TransferRequest) echo.Map {
	return echo.Map{
		"transfer": t,
		"totals": echo.Map{
			"requested_qty": t.TotalRequestedQty(),
			"shipped_qty":   t.TotalShippedQty(),
			"received_qty":  t.TotalReceivedQty(),
			"damaged_qty":   t.TotalDamagedQty(),
			"total_value":   t.TotalValue(),
		},
		"is_overdue":        t.IsOverdue(time.Now()),
		"is_urgent":         t.IsUrgent(),
		"has_discrepancies": t.HasDiscrepancies(),
	}
}

func listResponse(ts []inventoryEntity.TransferRequest, total int64) echo.Map {
	items := make([]echo.Map, 0, len(ts))
	for i := range ts {
		items = append(items, aggregateResponse(&ts[i]))
	}
	return echo.Map{"items": items, "total_count": total}
}
