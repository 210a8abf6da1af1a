package inventory

import (
	"fmt"

	inventoryEntity "retail.GO/model/entity/inventory"
)

// The engine returns a closed set of typed errors so callers can match with
// errors.As instead of parsing messages. Anything outside this set is an
// infrastructure error from the store.

// NotFoundError: a referenced transfer, location, product or ledger row does
// not exist.
type NotFoundError struct {
	Kind string // "transfer", "location", "product", "ledger entry", "line item"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// ValidationError: malformed input (non-positive quantity, empty reason,
// same source/destination, missing required field).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateLineError: the product already has a line on this transfer.
type DuplicateLineError struct {
	ProductID uint
}

func (e *DuplicateLineError) Error() string {
	return fmt.Sprintf("product %d already has a line on this transfer", e.ProductID)
}

// InsufficientStockError: a ledger row cannot satisfy a requested decrement.
type InsufficientStockError struct {
	LocationID uint
	ProductID  uint
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d at location %d: have %d, need %d",
		e.ProductID, e.LocationID, e.Available, e.Requested)
}

// InvalidStateError: an operation attempted from a status that does not
// permit it.
type InvalidStateError struct {
	Op     string
	Status inventoryEntity.TransferStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a transfer in status %q", e.Op, e.Status)
}

// InvalidReceiptError: received+damaged exceeds shipped for a line.
type InvalidReceiptError struct {
	ProductID uint
	Received  int
	Damaged   int
	Shipped   int
}

func (e *InvalidReceiptError) Error() string {
	return fmt.Sprintf("receipt for product %d exceeds shipment: received %d + damaged %d > shipped %d",
		e.ProductID, e.Received, e.Damaged, e.Shipped)
}
