package coupon

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fixit-store/internal/model"
)

// parseSeed reads "CODE,PCT[,MAXUSES]" lines from r. Blank lines and lines
// starting with '#' are skipped; a malformed line fails the whole load so a
// truncated file never half-seeds the ledger.
func parseSeed(r io.Reader) ([]model.Coupon, error) {
	var coupons []model.Coupon

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("line %d: expected CODE,PCT[,MAXUSES], got %q", lineNo, line)
		}

		code := model.NormalizeCouponCode(parts[0])
		if code == "" {
			return nil, fmt.Errorf("line %d: empty coupon code", lineNo)
		}

		pct, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("line %d: invalid discount percentage %q", lineNo, parts[1])
		}

		c := model.Coupon{
			Code:               code,
			DiscountPercentage: pct,
			IsActive:           true,
		}

		if len(parts) == 3 {
			maxUses, err := strconv.Atoi(strings.TrimSpace(parts[2]))
			if err != nil || maxUses < 1 {
				return nil, fmt.Errorf("line %d: invalid max uses %q", lineNo, parts[2])
			}
			c.MaxUses = &maxUses
		}

		coupons = append(coupons, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return coupons, nil
}
