package repository

import (
	"context"
	"fmt"

	"fixit-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, category, price, description, image, size,
	is_popular, is_quote_required, is_contact_only, is_model_required,
	is_universal_model, is_hidden, is_sold_out, rating, reviews, created_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.Image, &p.Size,
		&p.IsPopular, &p.IsQuoteRequired, &p.IsContactOnly, &p.IsModelRequired,
		&p.IsUniversalModel, &p.IsHidden, &p.IsSoldOut, &p.Rating, &p.Reviews, &p.CreatedAt,
	)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves all products, including hidden and sold-out ones.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

// GetVisible retrieves the shopper-facing catalogue.
func (r *productRepository) GetVisible(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE NOT is_hidden ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, category, price, description, image, size,
			is_popular, is_quote_required, is_contact_only, is_model_required,
			is_universal_model, is_hidden, is_sold_out, rating, reviews, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.Price, p.Description, p.Image, p.Size,
		p.IsPopular, p.IsQuoteRequired, p.IsContactOnly, p.IsModelRequired,
		p.IsUniversalModel, p.IsHidden, p.IsSoldOut, p.Rating, p.Reviews, p.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product created")
	return nil
}

// Update replaces the stored product.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = $3, price = $4, description = $5, image = $6,
			size = $7, is_popular = $8, is_quote_required = $9, is_contact_only = $10,
			is_model_required = $11, is_universal_model = $12, is_hidden = $13,
			is_sold_out = $14, rating = $15, reviews = $16
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.Price, p.Description, p.Image, p.Size,
		p.IsPopular, p.IsQuoteRequired, p.IsContactOnly, p.IsModelRequired,
		p.IsUniversalModel, p.IsHidden, p.IsSoldOut, p.Rating, p.Reviews,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product updated")
	return nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Debug().Str("product_id", id).Msg("product deleted")
	return nil
}
