package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeSoldOut           = "PRODUCT_SOLD_OUT"
	ErrCodeContactOnly       = "PRODUCT_CONTACT_ONLY"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeCartLineNotFound  = "CART_LINE_NOT_FOUND"
	ErrCodeCouponNotFound    = "COUPON_NOT_FOUND"
	ErrCodeDuplicateCoupon   = "DUPLICATE_COUPON"
	ErrCodeCouponInactive    = "COUPON_INACTIVE"
	ErrCodeCouponExhausted   = "COUPON_EXHAUSTED"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeDuplicateSubmit   = "DUPLICATE_SUBMISSION"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule error carrying a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrSoldOut           = NewDomainError(ErrCodeSoldOut, "Product is sold out")
	ErrContactOnly       = NewDomainError(ErrCodeContactOnly, "Product can only be ordered by contacting the shop")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrCartLineNotFound  = NewDomainError(ErrCodeCartLineNotFound, "Cart line not found")
	ErrCouponNotFound    = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrDuplicateCoupon   = NewDomainError(ErrCodeDuplicateCoupon, "Coupon code already exists")
	ErrCouponInactive    = NewDomainError(ErrCodeCouponInactive, "Coupon is not active")
	ErrCouponExhausted   = NewDomainError(ErrCodeCouponExhausted, "Coupon usage limit reached")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Order status can only move forward")
	ErrDuplicateSubmit   = NewDomainError(ErrCodeDuplicateSubmit, "An order with this client reference already exists")
)
