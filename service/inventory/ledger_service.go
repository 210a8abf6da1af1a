package inventory

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	inventoryEntity "retail.GO/model/entity/inventory"
	inventoryRepo "retail.GO/model/repository/inventory"
)

// StockLedgerService serializes every ledger mutation per (location,
// product) row. In-process callers queue on a keyed mutex; on MySQL the
// read inside the transaction additionally takes FOR UPDATE so independent
// processes serialize through the database row lock. No call ever holds
// more than one row lock.
//
// AddStock creates the ledger row on first use. ReduceStock and GetEntry
// return NotFoundError when the row is absent.
type StockLedgerService struct {
	db    *gorm.DB
	repo  *inventoryRepo.LedgerRepository
	locks sync.Map // "location/product" -> *sync.Mutex
}

func NewStockLedgerService(db *gorm.DB) (*StockLedgerService, error) {
	repo, err := inventoryRepo.NewLedgerRepository(db)
	if err != nil {
		return nil, err
	}
	return &StockLedgerService{db: db, repo: repo}, nil
}

func ledgerKey(locationID, productID uint) string {
	return fmt.Sprintf("%d/%d", locationID, productID)
}

func (s *StockLedgerService) lockRow(locationID, productID uint) func() {
	v, _ := s.locks.LoadOrStore(ledgerKey(locationID, productID), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// GetEntry returns the ledger row for one (location, product) pair.
func (s *StockLedgerService) GetEntry(locationID, productID uint) (*inventoryEntity.StockLedgerEntry, error) {
	entry, err := s.repo.GetEntry(locationID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "ledger entry", Ref: ledgerKey(locationID, productID)}
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// IsInStock is an advisory read: a positive result can be stale the moment
// it returns. Mutating callers must re-check under ReduceStock.
func (s *StockLedgerService) IsInStock(locationID, productID uint, qty int) bool {
	onHand, ok := s.repo.QtyOnHand(locationID, productID)
	return ok && onHand >= qty
}

// AddStock increments on-hand, creating the row on first stocking.
func (s *StockLedgerService) AddStock(locationID, productID uint, qty int) (*inventoryEntity.StockLedgerEntry, error) {
	if qty <= 0 {
		return nil, &ValidationError{Reason: "quantity must be positive"}
	}
	unlock := s.lockRow(locationID, productID)
	defer unlock()

	var out *inventoryEntity.StockLedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.addStockLocked(tx, locationID, productID, qty)
		out = entry
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReduceStock decrements on-hand, failing atomically if that would go
// negative.
func (s *StockLedgerService) ReduceStock(locationID, productID uint, qty int) (*inventoryEntity.StockLedgerEntry, error) {
	if qty <= 0 {
		return nil, &ValidationError{Reason: "quantity must be positive"}
	}
	unlock := s.lockRow(locationID, productID)
	defer unlock()

	var out *inventoryEntity.StockLedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.reduceStockLocked(tx, locationID, productID, qty)
		out = entry
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- transaction-scoped variants ---
//
// The orchestrator calls these inside its own transaction; the transaction's
// row locks do the serializing there, so the keyed mutex is not taken (a
// multi-line ship would otherwise hold several mutexes at once).

func (s *StockLedgerService) addStockLocked(tx *gorm.DB, locationID, productID uint, qty int) (*inventoryEntity.StockLedgerEntry, error) {
	entry, err := s.repo.GetEntryForUpdate(tx, locationID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = &inventoryEntity.StockLedgerEntry{
			LocationID: locationID,
			ProductID:  productID,
			QtyOnHand:  qty,
		}
		if err := tx.Create(entry).Error; err != nil {
			return nil, fmt.Errorf("creating ledger row: %w", err)
		}
		return entry, nil
	}
	if err != nil {
		return nil, err
	}
	entry.QtyOnHand += qty
	if err := tx.Save(entry).Error; err != nil {
		return nil, fmt.Errorf("saving ledger row: %w", err)
	}
	return entry, nil
}

func (s *StockLedgerService) reduceStockLocked(tx *gorm.DB, locationID, productID uint, qty int) (*inventoryEntity.StockLedgerEntry, error) {
	entry, err := s.repo.GetEntryForUpdate(tx, locationID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "ledger entry", Ref: ledgerKey(locationID, productID)}
	}
	if err != nil {
		return nil, err
	}
	if entry.QtyOnHand < qty {
		return nil, &InsufficientStockError{
			LocationID: locationID,
			ProductID:  productID,
			Available:  entry.QtyOnHand,
			Requested:  qty,
		}
	}
	entry.QtyOnHand -= qty
	if err := tx.Save(entry).Error; err != nil {
		return nil, fmt.Errorf("saving ledger row: %w", err)
	}
	return entry, nil
}

// adjustInTransitLocked moves the informational in-transit counter, clamped
// at zero. Never part of on-hand arithmetic.
func (s *StockLedgerService) adjustInTransitLocked(tx *gorm.DB, locationID, productID uint, delta int) error {
	entry, err := s.repo.GetEntryForUpdate(tx, locationID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if delta <= 0 {
			return nil
		}
		entry = &inventoryEntity.StockLedgerEntry{
			LocationID:   locationID,
			ProductID:    productID,
			QtyInTransit: delta,
		}
		return tx.Create(entry).Error
	}
	if err != nil {
		return err
	}
	entry.QtyInTransit += delta
	if entry.QtyInTransit < 0 {
		entry.QtyInTransit = 0
	}
	return tx.Save(entry).Error
}
