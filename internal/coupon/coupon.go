// Package coupon loads coupon seed files into the ledger. A seed file is a
// gzipped text file with one coupon per line:
//
//	CODE,DISCOUNT_PERCENTAGE[,MAX_USES]
//
// Codes are case-normalised; a missing MAX_USES means unlimited. Seeding is
// additive: codes already present in the ledger are left untouched so their
// usage counts survive restarts.
package coupon

import (
	"context"

	"fixit-store/internal/model"
)

// Loader defines the interface for loading coupon seed files.
type Loader interface {
	// Load reads a gzipped seed file and returns the coupons it defines.
	Load(ctx context.Context, path string) ([]model.Coupon, error)
}
