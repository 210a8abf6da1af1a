package inventory

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryEntity "retail.GO/model/entity/inventory"
	catalogRepo "retail.GO/model/repository/catalog"
	inventoryRepo "retail.GO/model/repository/inventory"
)

// ProductLookup resolves product references. The catalog itself is an
// external collaborator.
type ProductLookup interface {
	ProductExists(productID uint) (bool, error)
}

// LocationLookup resolves location references.
type LocationLookup interface {
	LocationExists(locationID uint) (bool, error)
}

// TransferService drives the transfer state machine:
//
//	PENDING → APPROVED → IN_TRANSIT → RECEIVED → COMPLETED
//
// with CANCELLED reachable from any state except RECEIVED, COMPLETED and
// CANCELLED. Ledger mutations happen only at Ship (debit source), Receive
// (credit destination) and Cancel-after-Ship (credit source back). Every
// operation that returns a transfer returns the fully loaded aggregate.
type TransferService struct {
	db        *gorm.DB
	transfers *inventoryRepo.TransferRepository
	ledger    *StockLedgerService
	products  ProductLookup
	locations LocationLookup
	numbers   *NumberGenerator
}

// NewTransferService wires the orchestrator against the shared DB with the
// default catalog-backed lookups.
func NewTransferService(db *gorm.DB, numberPrefix string) (*TransferService, error) {
	ledger, err := NewStockLedgerService(db)
	if err != nil {
		return nil, err
	}
	catalog, err := catalogRepo.NewCatalogRepository(db)
	if err != nil {
		return nil, err
	}
	transfers := inventoryRepo.NewTransferRepository(db)
	s := &TransferService{
		db:        db,
		transfers: transfers,
		ledger:    ledger,
		products:  catalog,
		locations: catalog,
	}
	s.numbers = NewNumberGenerator(numberPrefix, transfers.NumberExists)
	return s, nil
}

// WithLookups swaps the product/location lookups (for callers that resolve
// catalog data elsewhere).
func (s *TransferService) WithLookups(products ProductLookup, locations LocationLookup) *TransferService {
	s.products = products
	s.locations = locations
	return s
}

// Ledger exposes the stock ledger service sharing this orchestrator's DB.
func (s *TransferService) Ledger() *StockLedgerService {
	return s.ledger
}

// --- inputs ---

type CreateTransferInput struct {
	SourceID      uint
	DestinationID uint
	RequestedBy   string
	Type          inventoryEntity.TransferType
	Priority      inventoryEntity.TransferPriority
	ExpectedAt    *time.Time
	Notes         string
}

type AddItemInput struct {
	ProductID uint
	Qty       int
	UnitCost  decimal.Decimal
	Notes     string
}

type ReceiptInput struct {
	ProductID   uint
	ReceivedQty int
	DamagedQty  int
	Notes       string
}

type DamageInput struct {
	ProductID      uint
	Quantity       int
	Repairable     bool
	InsuranceClaim bool
	DamageValue    decimal.Decimal
	Detail         datatypes.JSON
	RecordedBy     string
}

// --- state machine ---

// Create opens a new PENDING transfer with a unique transfer number.
func (s *TransferService) Create(in CreateTransferInput) (*inventoryEntity.TransferRequest, error) {
	if in.SourceID == 0 || in.DestinationID == 0 {
		return nil, &ValidationError{Reason: "source and destination locations are required"}
	}
	if in.SourceID == in.DestinationID {
		return nil, &ValidationError{Reason: "source and destination must differ"}
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return nil, &ValidationError{Reason: "initiator is required"}
	}
	for _, loc := range []uint{in.SourceID, in.DestinationID} {
		ok, err := s.locations.LocationExists(loc)
		if err != nil {
			return nil, fmt.Errorf("looking up location: %w", err)
		}
		if !ok {
			return nil, &NotFoundError{Kind: "location", Ref: fmt.Sprint(loc)}
		}
	}

	if in.Type == "" {
		in.Type = inventoryEntity.TypeReplenishment
	}
	if in.Priority == "" {
		in.Priority = inventoryEntity.PriorityNormal
	}

	number, err := s.numbers.Next()
	if err != nil {
		return nil, err
	}

	t := &inventoryEntity.TransferRequest{
		TransferNumber: number,
		SourceID:       in.SourceID,
		DestinationID:  in.DestinationID,
		Status:         inventoryEntity.StatusPending,
		Type:           in.Type,
		Priority:       in.Priority,
		RequestedBy:    in.RequestedBy,
		ExpectedAt:     in.ExpectedAt,
		Notes:          in.Notes,
	}
	if err := s.db.Create(t).Error; err != nil {
		return nil, fmt.Errorf("creating transfer: %w", err)
	}
	return s.findAggregate(t.TransferID)
}

// AddItem adds a product line to a PENDING transfer. The stock check here is
// advisory only; Ship re-validates under lock.
func (s *TransferService) AddItem(transferID uint, in AddItemInput) (*inventoryEntity.TransferRequest, error) {
	if in.Qty <= 0 {
		return nil, &ValidationError{Reason: "quantity must be positive"}
	}
	ok, err := s.products.ProductExists(in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("looking up product: %w", err)
	}
	if !ok {
		return nil, &NotFoundError{Kind: "product", Ref: fmt.Sprint(in.ProductID)}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusPending {
			return &InvalidStateError{Op: "add an item to", Status: t.Status}
		}
		if t.LineFor(in.ProductID) != nil {
			return &DuplicateLineError{ProductID: in.ProductID}
		}
		if !s.ledger.IsInStock(t.SourceID, in.ProductID, in.Qty) {
			onHand, _ := s.ledger.repo.QtyOnHand(t.SourceID, in.ProductID)
			return &InsufficientStockError{
				LocationID: t.SourceID,
				ProductID:  in.ProductID,
				Available:  onHand,
				Requested:  in.Qty,
			}
		}
		line := inventoryEntity.TransferLineItem{
			TransferID:   t.TransferID,
			ProductID:    in.ProductID,
			RequestedQty: in.Qty,
			UnitCost:     in.UnitCost,
			Notes:        in.Notes,
		}
		return tx.Create(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// RemoveItem deletes a product line from a PENDING transfer.
func (s *TransferService) RemoveItem(transferID, productID uint) (*inventoryEntity.TransferRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusPending {
			return &InvalidStateError{Op: "remove an item from", Status: t.Status}
		}
		line := t.LineFor(productID)
		if line == nil {
			return &NotFoundError{Kind: "line item", Ref: fmt.Sprint(productID)}
		}
		return tx.Delete(&inventoryEntity.TransferLineItem{}, "item_id = ?", line.ItemID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// Approve moves PENDING → APPROVED, re-validating availability for every
// line (stock may have been consumed since the items were added).
func (s *TransferService) Approve(transferID uint, approver string) (*inventoryEntity.TransferRequest, error) {
	if strings.TrimSpace(approver) == "" {
		return nil, &ValidationError{Reason: "approver is required"}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusPending {
			return &InvalidStateError{Op: "approve", Status: t.Status}
		}
		if len(t.Items) == 0 {
			return &ValidationError{Reason: "transfer has no line items"}
		}
		if err := s.validateAvailability(tx, t); err != nil {
			return err
		}
		now := time.Now()
		t.Status = inventoryEntity.StatusApproved
		t.ApprovedBy = &approver
		t.ApprovedAt = &now
		return tx.Omit(clause.Associations).Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// Ship moves APPROVED → IN_TRANSIT, debiting the source ledger for every
// line. Validate-all-then-apply-all inside one transaction: if any line
// cannot be satisfied the whole shipment rolls back and no row is touched.
func (s *TransferService) Ship(transferID uint, shipper string) (*inventoryEntity.TransferRequest, error) {
	if strings.TrimSpace(shipper) == "" {
		return nil, &ValidationError{Reason: "shipper is required"}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusApproved {
			return &InvalidStateError{Op: "ship", Status: t.Status}
		}

		// Validate every line with the rows locked before touching any.
		if err := s.validateAvailability(tx, t); err != nil {
			return err
		}

		now := time.Now()
		for i := range t.Items {
			line := &t.Items[i]
			if _, err := s.ledger.reduceStockLocked(tx, t.SourceID, line.ProductID, line.RequestedQty); err != nil {
				return err
			}
			if err := s.ledger.adjustInTransitLocked(tx, t.DestinationID, line.ProductID, line.RequestedQty); err != nil {
				return err
			}
			shipped := line.RequestedQty
			line.ShippedQty = &shipped
			if err := tx.Model(line).Update("shipped_qty", shipped).Error; err != nil {
				return err
			}
		}

		t.Status = inventoryEntity.StatusInTransit
		t.ShippedBy = &shipper
		t.ShippedAt = &now
		return tx.Omit(clause.Associations).Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// Receive moves IN_TRANSIT → RECEIVED, crediting the destination ledger with
// the received quantity per line. Damaged units are logged, never stocked.
// When every line is fully accounted for (received + damaged == shipped) the
// transfer completes immediately; any shortfall stops at RECEIVED for manual
// follow-up.
func (s *TransferService) Receive(transferID uint, receiver string, receipts []ReceiptInput) (*inventoryEntity.TransferRequest, error) {
	if strings.TrimSpace(receiver) == "" {
		return nil, &ValidationError{Reason: "receiver is required"}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusInTransit {
			return &InvalidStateError{Op: "receive", Status: t.Status}
		}

		byProduct := make(map[uint]ReceiptInput, len(receipts))
		for _, r := range receipts {
			if r.ReceivedQty < 0 || r.DamagedQty < 0 {
				return &ValidationError{Reason: "received and damaged quantities must not be negative"}
			}
			line := t.LineFor(r.ProductID)
			if line == nil {
				return &NotFoundError{Kind: "line item", Ref: fmt.Sprint(r.ProductID)}
			}
			shipped := intOrZeroSvc(line.ShippedQty)
			if r.ReceivedQty+r.DamagedQty > shipped {
				return &InvalidReceiptError{
					ProductID: r.ProductID,
					Received:  r.ReceivedQty,
					Damaged:   r.DamagedQty,
					Shipped:   shipped,
				}
			}
			byProduct[r.ProductID] = r
		}

		now := time.Now()
		fullyAccounted := true
		for i := range t.Items {
			line := &t.Items[i]
			shipped := intOrZeroSvc(line.ShippedQty)
			r := byProduct[line.ProductID] // zero receipt for unmentioned lines

			if r.ReceivedQty > 0 {
				if _, err := s.ledger.addStockLocked(tx, t.DestinationID, line.ProductID, r.ReceivedQty); err != nil {
					return err
				}
			}
			if err := s.ledger.adjustInTransitLocked(tx, t.DestinationID, line.ProductID, -shipped); err != nil {
				return err
			}

			recv, dmg := r.ReceivedQty, r.DamagedQty
			line.ReceivedQty = &recv
			line.DamagedQty = &dmg
			updates := map[string]interface{}{"received_qty": recv, "damaged_qty": dmg}
			if r.Notes != "" {
				updates["notes"] = r.Notes
			}
			if err := tx.Model(line).Updates(updates).Error; err != nil {
				return err
			}

			if missing := shipped - recv - dmg; missing > 0 {
				fullyAccounted = false
				log.Printf("transfer %s: product %d short by %d units (shipped %d, received %d, damaged %d)",
					t.TransferNumber, line.ProductID, missing, shipped, recv, dmg)
			}
		}

		t.Status = inventoryEntity.StatusReceived
		if fullyAccounted {
			t.Status = inventoryEntity.StatusCompleted
		}
		t.ReceivedBy = &receiver
		t.ReceivedAt = &now
		return tx.Omit(clause.Associations).Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// Complete moves RECEIVED → COMPLETED after manual reconciliation of a
// short receipt.
func (s *TransferService) Complete(transferID uint) (*inventoryEntity.TransferRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusReceived {
			return &InvalidStateError{Op: "complete", Status: t.Status}
		}
		t.Status = inventoryEntity.StatusCompleted
		return tx.Omit(clause.Associations).Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// Cancel aborts a transfer from any non-terminal, non-RECEIVED state. If
// stock already left the source (IN_TRANSIT) it is credited back per line;
// compensation failures are logged and noted on the transfer but never block
// the cancellation.
func (s *TransferService) Cancel(transferID uint, reason string) (*inventoryEntity.TransferRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Reason: "cancellation reason is required"}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		switch t.Status {
		case inventoryEntity.StatusReceived, inventoryEntity.StatusCompleted, inventoryEntity.StatusCancelled:
			return &InvalidStateError{Op: "cancel", Status: t.Status}
		}

		var reconcile []string
		if t.Status == inventoryEntity.StatusInTransit {
			for i := range t.Items {
				line := &t.Items[i]
				shipped := intOrZeroSvc(line.ShippedQty)
				if shipped == 0 {
					continue
				}
				if _, err := s.ledger.addStockLocked(tx, t.SourceID, line.ProductID, shipped); err != nil {
					log.Printf("transfer %s: cancel compensation failed for product %d (%d units): %v",
						t.TransferNumber, line.ProductID, shipped, err)
					reconcile = append(reconcile, fmt.Sprintf("product %d: %d units not returned to location %d (%v)",
						line.ProductID, shipped, t.SourceID, err))
					continue
				}
				if err := s.ledger.adjustInTransitLocked(tx, t.DestinationID, line.ProductID, -shipped); err != nil {
					log.Printf("transfer %s: in-transit cleanup failed for product %d: %v", t.TransferNumber, line.ProductID, err)
				}
			}
		}

		now := time.Now()
		t.Status = inventoryEntity.StatusCancelled
		t.CancelReason = reason
		t.CancelledAt = &now
		if len(reconcile) > 0 {
			t.ReconcileNote = "manual reconciliation needed: " + strings.Join(reconcile, "; ")
		}
		return tx.Omit(clause.Associations).Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// RecordDamage appends supplementary damage detail to an IN_TRANSIT or
// RECEIVED transfer. Line item damaged counters stay authoritative; this
// never mutates them.
func (s *TransferService) RecordDamage(transferID uint, in DamageInput) (*inventoryEntity.TransferRequest, error) {
	if in.Quantity <= 0 {
		return nil, &ValidationError{Reason: "quantity must be positive"}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.loadForUpdate(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != inventoryEntity.StatusInTransit && t.Status != inventoryEntity.StatusReceived {
			return &InvalidStateError{Op: "record damage on", Status: t.Status}
		}
		if t.LineFor(in.ProductID) == nil {
			return &NotFoundError{Kind: "line item", Ref: fmt.Sprint(in.ProductID)}
		}
		rec := inventoryEntity.DamageRecord{
			TransferID:     t.TransferID,
			ProductID:      in.ProductID,
			Quantity:       in.Quantity,
			Repairable:     in.Repairable,
			InsuranceClaim: in.InsuranceClaim,
			DamageValue:    in.DamageValue,
			Detail:         in.Detail,
			RecordedBy:     in.RecordedBy,
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return s.findAggregate(transferID)
}

// --- read projections ---

func (s *TransferService) FindByID(transferID uint) (*inventoryEntity.TransferRequest, error) {
	return s.findAggregate(transferID)
}

func (s *TransferService) FindByNumber(number string) (*inventoryEntity.TransferRequest, error) {
	t, err := s.transfers.FindByNumber(number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "transfer", Ref: number}
	}
	return t, err
}

func (s *TransferService) FindByStatus(status inventoryEntity.TransferStatus) ([]inventoryEntity.TransferRequest, error) {
	return s.transfers.FindByStatus(status)
}

func (s *TransferService) FindOverdue() ([]inventoryEntity.TransferRequest, error) {
	return s.transfers.FindOverdue(time.Now())
}

func (s *TransferService) FindByDateRange(from, to time.Time) ([]inventoryEntity.TransferRequest, error) {
	return s.transfers.FindByDateRange(from, to)
}

func (s *TransferService) FindForLocation(locationID uint, currentPage, pageSize int) ([]inventoryEntity.TransferRequest, int64, error) {
	return s.transfers.FindForLocation(locationID, currentPage, pageSize)
}

// --- helpers ---

func (s *TransferService) findAggregate(transferID uint) (*inventoryEntity.TransferRequest, error) {
	t, err := s.transfers.FindByID(transferID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "transfer", Ref: fmt.Sprint(transferID)}
	}
	return t, err
}

// loadForUpdate reads the transfer with its lines inside tx, locking the
// transfer row on MySQL so concurrent transitions serialize.
func (s *TransferService) loadForUpdate(tx *gorm.DB, transferID uint) (*inventoryEntity.TransferRequest, error) {
	q := tx.Preload("Items")
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var t inventoryEntity.TransferRequest
	if err := q.First(&t, "transfer_id = ?", transferID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "transfer", Ref: fmt.Sprint(transferID)}
		}
		return nil, err
	}
	return &t, nil
}

// validateAvailability checks every line against the source ledger with row
// locks held, naming the first product that comes up short.
func (s *TransferService) validateAvailability(tx *gorm.DB, t *inventoryEntity.TransferRequest) error {
	for i := range t.Items {
		line := &t.Items[i]
		entry, err := s.ledger.repo.GetEntryForUpdate(tx, t.SourceID, line.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InsufficientStockError{
				LocationID: t.SourceID,
				ProductID:  line.ProductID,
				Available:  0,
				Requested:  line.RequestedQty,
			}
		}
		if err != nil {
			return err
		}
		if entry.QtyOnHand < line.RequestedQty {
			return &InsufficientStockError{
				LocationID: t.SourceID,
				ProductID:  line.ProductID,
				Available:  entry.QtyOnHand,
				Requested:  line.RequestedQty,
			}
		}
	}
	return nil
}

func intOrZeroSvc(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
