// Package pricing computes cart totals. It is pure and stateless: given the
// same lines and coupon it always produces the same figures, so the total
// shown to the shopper and the total persisted on the order are computed by
// the same code path.
package pricing

import (
	"github.com/shopspring/decimal"

	"fixit-store/internal/model"
)

// EffectiveUnitPrice returns the price one unit of the line actually costs:
// the negotiated quote when present, else the catalogue price, else zero.
func EffectiveUnitPrice(line model.CartLine) int64 {
	if line.QuotedPrice != nil {
		return *line.QuotedPrice
	}
	if line.UnitPrice != nil {
		return *line.UnitPrice
	}
	return 0
}

// LineTotal returns the line's contribution to the subtotal.
func LineTotal(line model.CartLine) int64 {
	return EffectiveUnitPrice(line) * int64(line.Quantity)
}

// Subtotal sums line totals. Insertion order does not matter.
func Subtotal(lines []model.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += LineTotal(l)
	}
	return total
}

// Discount returns the rupee discount a coupon takes off the given subtotal,
// rounded half-up to whole rupees. A nil or unusable coupon discounts nothing.
func Discount(subtotal int64, coupon *model.Coupon) int64 {
	if coupon == nil || !coupon.Usable() {
		return 0
	}
	pct := decimal.NewFromInt(int64(coupon.DiscountPercentage))
	discount := decimal.NewFromInt(subtotal).
		Mul(pct).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return discount.IntPart()
}

// DiscountedTotal is the amount the customer pays: subtotal minus the coupon
// discount. This is the single rounding site; both the quote shown at
// checkout and the total frozen on the order come from here.
func DiscountedTotal(lines []model.CartLine, coupon *model.Coupon) int64 {
	subtotal := Subtotal(lines)
	return subtotal - Discount(subtotal, coupon)
}

// Quote prices a cart for display.
func Quote(lines []model.CartLine, coupon *model.Coupon) model.CartQuote {
	subtotal := Subtotal(lines)
	discount := Discount(subtotal, coupon)
	q := model.CartQuote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
	if coupon != nil && discount > 0 {
		code := coupon.Code
		q.CouponCode = &code
	}
	return q
}
