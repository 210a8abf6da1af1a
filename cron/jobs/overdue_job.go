package jobs

import (
	"log"
	"time"

	inventoryRepo "retail.GO/model/repository/inventory"
)

// OverdueSweepJob logs in-transit transfers past their expected delivery.
// Advisory and read-only; it never mutates transfer state.
func OverdueSweepJob(args ...string) {
	db, err := openDB()
	if err != nil {
		log.Printf("overdue sweep: DB connection failed: %v", err)
		return
	}

	repo := inventoryRepo.NewTransferRepository(db)
	overdue, err := repo.FindOverdue(time.Now())
	if err != nil {
		log.Printf("overdue sweep: query failed: %v", err)
		return
	}
	if len(overdue) == 0 {
		log.Println("overdue sweep: no overdue transfers")
		return
	}
	for i := range overdue {
		t := &overdue[i]
		log.Printf("overdue sweep: transfer %s (%d -> %d) expected %s, %d units in transit",
			t.TransferNumber, t.SourceID, t.DestinationID,
			t.ExpectedAt.Format(time.RFC3339), t.TotalShippedQty())
	}
}
