package jobs

import (
	"context"
	"log"
	"time"

	"retail.GO/graphql/resolvers"
	inventoryRepo "retail.GO/model/repository/inventory"
)

// indexWindow covers two scheduler intervals so a slow run cannot miss rows.
const indexWindow = 10 * time.Minute

// TransferIndexJob pushes recently-touched transfers into the search index.
// A no-op when Elasticsearch is not configured.
func TransferIndexJob(args ...string) {
	search := resolvers.GetSearchService()
	if !search.Configured() {
		return
	}

	db, err := openDB()
	if err != nil {
		log.Printf("transfer index: DB connection failed: %v", err)
		return
	}

	repo := inventoryRepo.NewTransferRepository(db)
	touched, err := repo.FindTouchedSince(time.Now().Add(-indexWindow))
	if err != nil {
		log.Printf("transfer index: query failed: %v", err)
		return
	}

	ctx := context.Background()
	indexed := 0
	for i := range touched {
		if err := search.IndexTransfer(ctx, &touched[i]); err != nil {
			log.Printf("transfer index: %s: %v", touched[i].TransferNumber, err)
			continue
		}
		indexed++
	}
	if indexed > 0 {
		log.Printf("transfer index: indexed %d transfers", indexed)
	}
}
