package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fixit-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// OrdersChannel is the Postgres notification channel signalling that the
// orders table changed. Listeners re-fetch the authoritative list; the
// payload is only the order id and is never merged locally.
const OrdersChannel = "orders_changed"

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const orderColumns = `id, customer_name, email, phone, address, items, total,
	payment_mode, status, coupon_code, client_reference, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	var items []byte
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.Email, &o.Phone, &o.Address, &items, &o.Total,
		&o.PaymentMode, &o.Status, &o.CouponCode, &o.ClientReference, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return json.Unmarshal(items, &o.Items)
}

// Insert persists a new order within the provided transaction.
func (r *orderRepository) Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, customer_name, email, phone, address, items, total,
			payment_mode, status, coupon_code, client_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = tx.Exec(ctx, query,
		order.ID, order.CustomerName, order.Email, order.Phone, order.Address,
		items, order.Total, order.PaymentMode, order.Status, order.CouponCode,
		order.ClientReference, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation &&
			strings.Contains(pgErr.ConstraintName, "client_reference") {
			r.logger.Debug().Str("order_id", order.ID).Msg("duplicate order submission")
			return model.ErrDuplicateSubmit
		}
		r.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// Queued inside the transaction: the notification only fires on commit.
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, OrdersChannel, order.ID); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to queue order notification")
		return fmt.Errorf("failed to queue order notification: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID).
		Int("item_count", len(order.Items)).
		Msg("order inserted")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, id), &o)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &o, nil
}

// GetByClientReference retrieves the order created by a previous submission.
func (r *orderRepository) GetByClientReference(ctx context.Context, ref string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_reference = $1`

	var o model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, ref), &o)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("client_reference", ref).Msg("failed to query order by reference")
		return nil, fmt.Errorf("failed to query order by reference: %w", err)
	}

	return &o, nil
}

// List retrieves all orders, newest first.
func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the order status and notifies listeners.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	if _, err := r.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, OrdersChannel, id); err != nil {
		r.logger.Warn().Err(err).Str("order_id", id).Msg("failed to notify order change")
	}

	r.logger.Debug().
		Str("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// Delete removes an order permanently.
func (r *orderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	if _, err := r.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, OrdersChannel, id); err != nil {
		r.logger.Warn().Err(err).Str("order_id", id).Msg("failed to notify order change")
	}

	r.logger.Debug().Str("order_id", id).Msg("order deleted")
	return nil
}
