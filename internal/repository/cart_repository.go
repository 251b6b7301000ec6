package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fixit-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL. Cart lines are
// stored as a JSON document; the whole cart is replaced on every save, which
// keeps reload-after-restart byte-for-byte faithful to the last mutation.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Get retrieves the cart for a session.
func (r *cartRepository) Get(ctx context.Context, sessionID string) (*model.Cart, error) {
	query := `SELECT session_id, lines, updated_at FROM carts WHERE session_id = $1`

	var (
		cart  model.Cart
		lines []byte
	)
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(&cart.SessionID, &lines, &cart.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("session_id", sessionID).Msg("no stored cart for session")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	if err := json.Unmarshal(lines, &cart.Lines); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to decode cart lines")
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}

	return &cart, nil
}

// Save upserts the full cart contents.
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	lines, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart lines: %w", err)
	}

	query := `
		INSERT INTO carts (session_id, lines, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET lines = $2, updated_at = $3
	`

	cart.UpdatedAt = time.Now()
	if _, err := r.pool.Exec(ctx, query, cart.SessionID, lines, cart.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("session_id", cart.SessionID).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	r.logger.Debug().
		Str("session_id", cart.SessionID).
		Int("line_count", len(cart.Lines)).
		Msg("cart saved")

	return nil
}

// Delete drops the stored cart for a session.
func (r *cartRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	r.logger.Debug().Str("session_id", sessionID).Msg("cart deleted")
	return nil
}
