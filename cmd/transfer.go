package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"retail.GO/config"
	inventoryRepo "retail.GO/model/repository/inventory"
)

var overdueCmd = &cobra.Command{
	Use:   "transfer:overdue",
	Short: "Print in-transit transfers past their expected delivery",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		repo := inventoryRepo.NewTransferRepository(db)
		overdue, err := repo.FindOverdue(time.Now())
		if err != nil {
			fmt.Printf("Query failed: %v\n", err)
			return
		}
		if len(overdue) == 0 {
			fmt.Println("No overdue transfers.")
			return
		}

		fmt.Printf("%-20s %-8s %-8s %-22s %8s %8s\n", "NUMBER", "FROM", "TO", "EXPECTED", "SHIPPED", "VALUE")
		for i := range overdue {
			t := &overdue[i]
			fmt.Printf("%-20s %-8d %-8d %-22s %8d %8s\n",
				t.TransferNumber, t.SourceID, t.DestinationID,
				t.ExpectedAt.Format(time.RFC3339), t.TotalShippedQty(), t.TotalValue().StringFixed(2))
			if t.ReconcileNote != "" {
				fmt.Printf("  [reconcile] %s\n", t.ReconcileNote)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(overdueCmd)
}
