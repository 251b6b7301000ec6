package model

import (
	"crypto/rand"
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusCompleted OrderStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusShipped || s == StatusCompleted
}

// rank orders the statuses along the forward-only flow.
func (s OrderStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusShipped:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether the status may move to next. Only forward
// moves along Pending -> Shipped -> Completed are allowed; deletion is a
// separate operation available from any state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() > s.rank()
}

// PaymentMode is how the customer pays. UPI and COD come from the shopper
// flow; Cash and Card are the in-shop point-of-sale variants.
type PaymentMode string

const (
	PaymentUPI  PaymentMode = "UPI"
	PaymentCOD  PaymentMode = "COD"
	PaymentCash PaymentMode = "Cash"
	PaymentCard PaymentMode = "Card"
)

// InShop reports whether the payment mode belongs to the point-of-sale flow.
func (m PaymentMode) InShop() bool {
	return m == PaymentCash || m == PaymentCard
}

// Order is the immutable record created from a priced cart at checkout.
// Total is frozen at creation; later catalogue changes never touch it.
type Order struct {
	ID              string      `json:"id" db:"id"`
	CustomerName    string      `json:"customerName" db:"customer_name"`
	Email           string      `json:"email" db:"email"`
	Phone           string      `json:"phone" db:"phone"`
	Address         string      `json:"address" db:"address"`
	Items           []CartLine  `json:"items" db:"items"`
	Total           int64       `json:"total" db:"total"`
	PaymentMode     PaymentMode `json:"paymentMode" db:"payment_mode"`
	Status          OrderStatus `json:"status" db:"status"`
	CouponCode      *string     `json:"couponCode,omitempty" db:"coupon_code"`
	ClientReference *string     `json:"clientReference,omitempty" db:"client_reference"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderID generates an order id that sorts by creation time and stays
// collision-resistant across concurrent submissions: a FIX- prefix, the
// creation instant in milliseconds, and a random base36 suffix.
func NewOrderID(now time.Time) string {
	suffix := make([]byte, 5)
	if _, err := rand.Read(suffix); err != nil {
		// rand.Read on supported platforms never fails; fall back to time bits
		for i := range suffix {
			suffix[i] = byte(now.UnixNano() >> (i * 8))
		}
	}
	for i, b := range suffix {
		suffix[i] = orderIDAlphabet[int(b)%len(orderIDAlphabet)]
	}
	return fmt.Sprintf("FIX-%d-%s", now.UnixMilli(), suffix)
}

// CheckoutRequest is the shopper checkout payload. The address mirrors the
// storefront form; pincode is the Indian 6-digit postal code.
type CheckoutRequest struct {
	CustomerName    string  `json:"customerName" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required,min=10,max=15"`
	Street          string  `json:"street" validate:"required"`
	Landmark        string  `json:"landmark"`
	City            string  `json:"city" validate:"required"`
	State           string  `json:"state" validate:"required"`
	Pincode         string  `json:"pincode" validate:"required,len=6,numeric"`
	PaymentMode     string  `json:"paymentMode" validate:"required,oneof=UPI COD"`
	CouponCode      *string `json:"couponCode,omitempty"`
	ClientReference *string `json:"clientReference,omitempty"`
}

// FullAddress joins the address fields the way the storefront renders them.
func (r *CheckoutRequest) FullAddress() string {
	addr := r.Street + ", "
	if r.Landmark != "" {
		addr += r.Landmark + ", "
	}
	return addr + fmt.Sprintf("%s, %s - %s", r.City, r.State, r.Pincode)
}

// InShopOrderRequest is the point-of-sale payload: staff enter the lines
// directly and the order completes immediately.
type InShopOrderRequest struct {
	CustomerName string       `json:"customerName" validate:"required"`
	Phone        string       `json:"phone" validate:"required,min=10,max=15"`
	Items        []InShopLine `json:"items" validate:"required,min=1,dive"`
	PaymentMode  string       `json:"paymentMode" validate:"required,oneof=Cash Card"`
	CouponCode   *string      `json:"couponCode,omitempty"`
}

// InShopLine is one staff-entered line of a point-of-sale order.
type InShopLine struct {
	ProductID    string `json:"productId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1,max=10"`
	PhoneDetails string `json:"phoneDetails,omitempty"`
	QuotedPrice  *int64 `json:"quotedPrice,omitempty"`
}

// CartQuote is the priced view of a cart, computed with the same rounding as
// the persisted order total so the two can never diverge.
type CartQuote struct {
	Subtotal   int64   `json:"subtotal"`
	Discount   int64   `json:"discount"`
	Total      int64   `json:"total"`
	CouponCode *string `json:"couponCode,omitempty"`
}
