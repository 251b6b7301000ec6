package repository

import (
	"context"
	"errors"
	"fmt"

	"fixit-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgErrUniqueViolation is the PostgreSQL error code for unique_violation.
const pgErrUniqueViolation = "23505"

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

const couponColumns = `code, discount_percentage, is_active, max_uses, times_used, created_at`

func scanCoupon(row pgx.Row, c *model.Coupon) error {
	return row.Scan(&c.Code, &c.DiscountPercentage, &c.IsActive, &c.MaxUses, &c.TimesUsed, &c.CreatedAt)
}

// GetByCode retrieves a coupon by its case-normalised code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	code = model.NormalizeCouponCode(code)
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var c model.Coupon
	err := scanCoupon(r.pool.QueryRow(ctx, query, code), &c)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// List retrieves all coupons, newest first.
func (r *couponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query coupons")
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err := scanCoupon(rows, &c); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon rows")
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}

// Create inserts a new coupon.
func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	c.Code = model.NormalizeCouponCode(c.Code)
	query := `
		INSERT INTO coupons (code, discount_percentage, is_active, max_uses, times_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, c.Code, c.DiscountPercentage, c.IsActive, c.MaxUses, c.TimesUsed, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			r.logger.Debug().Str("code", c.Code).Msg("duplicate coupon code")
			return model.ErrDuplicateCoupon
		}
		r.logger.Error().Err(err).Str("code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("code", c.Code).Msg("coupon created")
	return nil
}

// CreateIfAbsent inserts a coupon unless the code already exists.
func (r *couponRepository) CreateIfAbsent(ctx context.Context, c *model.Coupon) (bool, error) {
	c.Code = model.NormalizeCouponCode(c.Code)
	query := `
		INSERT INTO coupons (code, discount_percentage, is_active, max_uses, times_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, c.Code, c.DiscountPercentage, c.IsActive, c.MaxUses, c.TimesUsed, c.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("code", c.Code).Msg("failed to insert coupon")
		return false, fmt.Errorf("failed to insert coupon: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a coupon. Orders that referenced it keep their couponCode as
// a historical label; nothing cascades.
func (r *couponRepository) Delete(ctx context.Context, code string) error {
	code = model.NormalizeCouponCode(code)

	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE code = $1`, code)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to delete coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	r.logger.Debug().Str("code", code).Msg("coupon deleted")
	return nil
}

// RecordUsage atomically increments times_used within the given transaction.
// The WHERE clause is the whole concurrency story: two competing redemptions
// of the last remaining use serialise on the row lock, and the loser sees
// zero rows because the guard no longer holds.
func (r *couponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	code = model.NormalizeCouponCode(code)
	query := `
		UPDATE coupons
		SET times_used = times_used + 1
		WHERE code = $1
		  AND is_active
		  AND (max_uses IS NULL OR times_used < max_uses)
		RETURNING ` + couponColumns

	var c model.Coupon
	err := scanCoupon(tx.QueryRow(ctx, query, code), &c)
	if err == nil {
		r.logger.Debug().
			Str("code", code).
			Int("times_used", c.TimesUsed).
			Msg("coupon usage recorded")
		return &c, nil
	}
	if err != pgx.ErrNoRows {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to record coupon usage")
		return nil, fmt.Errorf("failed to record coupon usage: %w", err)
	}

	// Zero rows: classify why the guard rejected.
	var (
		isActive  bool
		maxUses   *int
		timesUsed int
	)
	err = tx.QueryRow(ctx,
		`SELECT is_active, max_uses, times_used FROM coupons WHERE code = $1`, code,
	).Scan(&isActive, &maxUses, &timesUsed)
	if err == pgx.ErrNoRows {
		return nil, model.ErrCouponNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to classify coupon rejection")
		return nil, fmt.Errorf("failed to classify coupon rejection: %w", err)
	}
	if !isActive {
		return nil, model.ErrCouponInactive
	}
	r.logger.Warn().
		Str("code", code).
		Int("times_used", timesUsed).
		Msg("coupon usage cap reached at commit time")
	return nil, model.ErrCouponExhausted
}
