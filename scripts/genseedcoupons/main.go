package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateSeedCoupons creates a sample coupon seed file for local runs.
// Each line is CODE,DISCOUNT_PERCENTAGE[,MAX_USES]; a missing MAX_USES
// means unlimited redemptions.
func main() {
	dataDir := "data/coupons"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	lines := []string{
		"SAVE10,10,100",
		"SAVE20,20,50",
		"WELCOME5,5",
		"DIWALI25,25,200",
		"FIXIT50,50,10",
	}

	filePath := filepath.Join(dataDir, "seed_coupons.gz")
	if err := createSeedFile(filePath, lines); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d coupons\n", filePath, len(lines))
	fmt.Println("\nSeed the ledger with:")
	fmt.Println("  COUPON_SEED_ENABLED=true COUPON_SEED_FILES=data/coupons/seed_coupons.gz ./api")
}

func createSeedFile(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", line); err != nil {
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	return nil
}
