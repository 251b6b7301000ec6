package service

import (
	"context"
	"fmt"
	"time"

	"fixit-store/internal/model"
	"fixit-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(productRepo repository.ProductRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// ListVisible retrieves the shopper-facing catalogue.
func (s *catalogService) ListVisible(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.GetVisible(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list visible products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListAll retrieves every product for the admin back-office.
func (s *catalogService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list all products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// validateProduct enforces the catalogue invariants.
func validateProduct(p *model.Product) error {
	if p.Name == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Product name is required")
	}
	if !p.Category.Valid() {
		return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Unknown category %q", p.Category))
	}
	// A product without a fixed price must be quote-required: its price
	// arrives later as a negotiated quote on the cart line.
	if p.Price == nil && !p.IsQuoteRequired {
		return model.NewDomainError(model.ErrCodeValidation, "Product without a price must be quote-required")
	}
	if p.Price != nil && *p.Price < 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Product price cannot be negative")
	}
	return nil
}

// Create adds a product to the catalogue.
func (s *catalogService) Create(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", p.ID).
		Str("category", string(p.Category)).
		Str("workflow", string(p.Workflow())).
		Msg("product created")

	return nil
}

// Update replaces a product.
func (s *catalogService) Update(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		return model.ErrProductNotFound
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		if err == model.ErrProductNotFound {
			return err
		}
		s.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product updated")
	return nil
}

// Delete removes a product from the catalogue. Existing orders keep their
// item snapshots; nothing cascades.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if err == model.ErrProductNotFound {
			return err
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
