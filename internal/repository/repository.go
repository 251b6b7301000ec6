package repository

import (
	"context"

	"fixit-store/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves all products, including hidden and sold-out ones.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetVisible retrieves the shopper-facing catalogue: hidden products
	// are excluded, sold-out products stay listed.
	GetVisible(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns (nil, nil) when missing.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) error

	// Update replaces the stored product. Returns model.ErrProductNotFound
	// if no row matched.
	Update(ctx context.Context, p *model.Product) error

	// Delete removes a product. Returns model.ErrProductNotFound if no row matched.
	Delete(ctx context.Context, id string) error
}

// CartRepository persists session carts. The whole cart is written on every
// mutation so reloading a session reproduces the exact same lines.
type CartRepository interface {
	// Get retrieves the cart for a session. Returns (nil, nil) when the
	// session has no stored cart yet.
	Get(ctx context.Context, sessionID string) (*model.Cart, error)

	// Save upserts the full cart contents.
	Save(ctx context.Context, cart *model.Cart) error

	// Delete drops the stored cart for a session.
	Delete(ctx context.Context, sessionID string) error
}

// CouponRepository is the coupon ledger.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its case-normalised code.
	// Returns (nil, nil) when missing.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// List retrieves all coupons, newest first.
	List(ctx context.Context) ([]model.Coupon, error)

	// Create inserts a new coupon. Returns model.ErrDuplicateCoupon when the
	// code already exists.
	Create(ctx context.Context, c *model.Coupon) error

	// CreateIfAbsent inserts a coupon unless the code already exists.
	// Reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, c *model.Coupon) (bool, error)

	// Delete removes a coupon. Returns model.ErrCouponNotFound if no row matched.
	Delete(ctx context.Context, code string) error

	// RecordUsage atomically increments times_used within the given
	// transaction, guarded so the cap can never be exceeded under
	// concurrent redemptions. Returns the updated coupon, or a domain
	// error (not found / inactive / exhausted) when the guard rejects.
	RecordUsage(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Insert persists a new order within the provided transaction and
	// queues a change notification for the commit.
	Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID. Returns (nil, nil) when missing.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// GetByClientReference retrieves the order created by a previous
	// submission with the same client reference. Returns (nil, nil) when
	// no such order exists.
	GetByClientReference(ctx context.Context, ref string) (*model.Order, error)

	// List retrieves all orders, newest first.
	List(ctx context.Context) ([]model.Order, error)

	// UpdateStatus sets the order status. Returns model.ErrOrderNotFound
	// if no row matched.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error

	// Delete removes an order permanently. Returns model.ErrOrderNotFound
	// if no row matched.
	Delete(ctx context.Context, id string) error
}
