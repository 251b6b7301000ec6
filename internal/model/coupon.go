package model

import (
	"strings"
	"time"
)

// Coupon is a named percentage discount with an optional usage cap.
// TimesUsed only ever grows, and never past MaxUses.
type Coupon struct {
	Code               string    `json:"code" db:"code"`
	DiscountPercentage int       `json:"discountPercentage" db:"discount_percentage"`
	IsActive           bool      `json:"isActive" db:"is_active"`
	MaxUses            *int      `json:"maxUses,omitempty" db:"max_uses"`
	TimesUsed          int       `json:"timesUsed" db:"times_used"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// NormalizeCouponCode case-normalises a coupon code for storage and lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Usable reports whether the coupon can be applied right now: it must be
// active and, when capped, still under its usage limit.
func (c *Coupon) Usable() bool {
	if !c.IsActive {
		return false
	}
	if c.MaxUses != nil && c.TimesUsed >= *c.MaxUses {
		return false
	}
	return true
}
