package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"grid-sync/core/config"
	"grid-sync/core/database"
	"grid-sync/core/retry"
	"grid-sync/core/sheets"
	"grid-sync/feature/grid"
	"grid-sync/feature/rows"
)

// debug_grid compares the live grid with the store without writing anything.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	client, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}

	adapter := grid.NewAdapter(client, cfg.Sheets.SheetName, retry.New(cfg.Retry, nil), nil)
	repo := rows.NewRepository(db)

	// Test 1: Grid read and header normalization
	fmt.Println("=== TEST 1: Grid Read ===")
	snap, err := adapter.ReadAll(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Headers: %v\n", snap.Headers)
	fmt.Printf("Data rows with an id: %d\n", len(snap.Rows))

	gridIDs := make(map[string]int, len(snap.Rows))
	var duplicates []string
	for _, row := range snap.Rows {
		if _, dup := gridIDs[row.ID()]; dup {
			duplicates = append(duplicates, row.ID())
			continue
		}
		gridIDs[row.ID()] = row.Number
	}
	if len(duplicates) > 0 {
		fmt.Printf("Duplicate ids (first occurrence wins): %v\n", duplicates)
	}

	// Test 2: Store comparison
	fmt.Println("\n=== TEST 2: Store Comparison ===")
	active, err := repo.ListActiveIDs(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Active store rows: %d\n", len(active))

	var missingInStore, changed []string
	for _, row := range snap.Rows {
		if gridIDs[row.ID()] != row.Number {
			continue
		}
		rec, err := repo.Get(ctx, row.ID())
		if err != nil {
			log.Fatal(err)
		}
		switch {
		case rec == nil || !rec.Active():
			missingInStore = append(missingInStore, row.ID())
		case rec.Hash != row.Content.Fingerprint():
			changed = append(changed, row.ID())
		}
	}

	var missingInGrid []string
	for _, id := range active {
		if _, ok := gridIDs[id]; !ok {
			missingInGrid = append(missingInGrid, id)
		}
	}
	sort.Strings(missingInGrid)

	fmt.Printf("Would insert or restore: %v\n", missingInStore)
	fmt.Printf("Would update: %v\n", changed)
	fmt.Printf("Would soft delete: %v\n", missingInGrid)

	output := map[string]interface{}{
		"headers":          snap.Headers,
		"grid_rows":        len(snap.Rows),
		"store_active":     len(active),
		"duplicates":       duplicates,
		"missing_in_store": missingInStore,
		"changed":          changed,
		"missing_in_grid":  missingInGrid,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	os.WriteFile("debug_grid.json", data, 0644)

	fmt.Println("\nDebug complete. Check debug_grid.json for details.")
}
