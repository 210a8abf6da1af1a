package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"retail.GO/config"
	inventoryService "retail.GO/service/inventory"
)

var (
	importFile  string
	importBatch int
)

var stockImportCmd = &cobra.Command{
	Use:   "stock:import",
	Short: "Import stock ledger rows from CSV",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(importFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			return
		}
		defer f.Close()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		res, err := inventoryService.ImportLedgerCSV(db, f, importBatch)
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Import Report ===
Imported:       %d
Skipped:        %d
Warnings:       %d
`, res.Imported, res.Skipped, len(res.Warnings))
	},
}

func init() {
	stockImportCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file with ledger rows")
	stockImportCmd.Flags().IntVarP(&importBatch, "batch", "b", 500, "Upsert batch size")
	_ = stockImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(stockImportCmd)
}
