package service

import (
	"context"

	"fixit-store/internal/model"
)

// CatalogService defines operations for catalogue management.
type CatalogService interface {
	// ListVisible retrieves the shopper-facing catalogue (hidden products
	// excluded, sold-out products still listed).
	ListVisible(ctx context.Context) ([]model.Product, error)

	// ListAll retrieves every product for the admin back-office.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create adds a product to the catalogue.
	Create(ctx context.Context, p *model.Product) error

	// Update replaces a product.
	Update(ctx context.Context, p *model.Product) error

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, id string) error
}

// CartService owns one shopper session's selection.
type CartService interface {
	// Get returns the session's cart, empty if nothing was stored yet.
	Get(ctx context.Context, sessionID string) (*model.Cart, error)

	// AddItem puts quantity units of a product into the cart. Adds with
	// the same product and phone details merge into the existing line.
	AddItem(ctx context.Context, sessionID, productID string, quantity int, phoneDetails string, quotedPrice *int64) (*model.Cart, error)

	// UpdateQuantity shifts a line's quantity by delta, clamped to [1, 10].
	UpdateQuantity(ctx context.Context, sessionID, lineKey string, delta int) (*model.Cart, error)

	// RemoveItem deletes the matching line.
	RemoveItem(ctx context.Context, sessionID, lineKey string) (*model.Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, sessionID string) error

	// Quote prices the cart with an optional coupon, using the exact
	// computation checkout will use.
	Quote(ctx context.Context, sessionID string, couponCode *string) (*model.CartQuote, error)
}

// CouponService manages the coupon ledger. Usage recording belongs to the
// order-creation transaction, not this service.
type CouponService interface {
	// Apply checks a coupon ahead of checkout, returning it when usable or
	// a domain error explaining why not (missing, inactive, exhausted).
	Apply(ctx context.Context, code string) (*model.Coupon, error)

	// Create adds a coupon.
	Create(ctx context.Context, c *model.Coupon) error

	// Delete removes a coupon.
	Delete(ctx context.Context, code string) error

	// List retrieves all coupons.
	List(ctx context.Context) ([]model.Coupon, error)

	// Import bulk-loads seed coupons, skipping codes that already exist.
	// Returns the number actually inserted.
	Import(ctx context.Context, coupons []model.Coupon) (int, error)
}

// OrderService converts priced carts into immutable orders and drives the
// status lifecycle.
type OrderService interface {
	// Checkout snapshots the session's cart into a Pending order. The cart
	// is cleared only after the order has durably committed; a coupon, if
	// applied, has its usage recorded in the same transaction.
	Checkout(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.Order, error)

	// CreateInShopOrder is the point-of-sale path: staff-entered lines,
	// Cash or Card payment, created directly in Completed status.
	CreateInShopOrder(ctx context.Context, req *model.InShopOrderRequest) (*model.Order, error)

	// List retrieves all orders, newest first.
	List(ctx context.Context) ([]model.Order, error)

	// GetByID retrieves a single order.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// UpdateStatus moves an order forward along Pending -> Shipped -> Completed.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)

	// Delete removes an order permanently, from any status.
	Delete(ctx context.Context, id string) error
}
