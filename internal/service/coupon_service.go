package service

import (
	"context"
	"fmt"
	"time"

	"fixit-store/internal/model"
	"fixit-store/internal/repository"

	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(couponRepo repository.CouponRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Apply checks a coupon ahead of checkout.
func (s *couponService) Apply(ctx context.Context, code string) (*model.Coupon, error) {
	if code == "" {
		return nil, model.ErrCouponNotFound
	}

	coupon, err := resolveUsableCoupon(ctx, s.couponRepo, code)
	if err != nil {
		s.logger.Debug().Str("code", code).Err(err).Msg("coupon not applicable")
		return nil, err
	}

	return coupon, nil
}

// validateCoupon enforces ledger invariants on admin-created coupons.
func validateCoupon(c *model.Coupon) error {
	if model.NormalizeCouponCode(c.Code) == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Coupon code is required")
	}
	if c.DiscountPercentage < 0 || c.DiscountPercentage > 100 {
		return model.NewDomainError(model.ErrCodeValidation, "Discount percentage must be between 0 and 100")
	}
	if c.MaxUses != nil && *c.MaxUses < 1 {
		return model.NewDomainError(model.ErrCodeValidation, "Max uses must be at least 1")
	}
	if c.TimesUsed != 0 {
		return model.NewDomainError(model.ErrCodeValidation, "A new coupon starts with zero uses")
	}
	return nil
}

// Create adds a coupon.
func (s *couponService) Create(ctx context.Context, c *model.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		if err == model.ErrDuplicateCoupon {
			return err
		}
		s.logger.Error().Err(err).Str("code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().
		Str("code", c.Code).
		Int("discount_percentage", c.DiscountPercentage).
		Msg("coupon created")

	return nil
}

// Delete removes a coupon.
func (s *couponService) Delete(ctx context.Context, code string) error {
	if err := s.couponRepo.Delete(ctx, code); err != nil {
		if err == model.ErrCouponNotFound {
			return err
		}
		s.logger.Error().Err(err).Str("code", code).Msg("failed to delete coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	s.logger.Info().Str("code", code).Msg("coupon deleted")
	return nil
}

// List retrieves all coupons.
func (s *couponService) List(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list coupons")
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// Import bulk-loads seed coupons, skipping codes that already exist so a
// restart never resets a live coupon's usage count.
func (s *couponService) Import(ctx context.Context, coupons []model.Coupon) (int, error) {
	imported := 0
	for i := range coupons {
		c := coupons[i]
		c.TimesUsed = 0
		if err := validateCoupon(&c); err != nil {
			s.logger.Warn().Str("code", c.Code).Err(err).Msg("skipping invalid seed coupon")
			continue
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}

		inserted, err := s.couponRepo.CreateIfAbsent(ctx, &c)
		if err != nil {
			return imported, fmt.Errorf("failed to import coupon %s: %w", c.Code, err)
		}
		if inserted {
			imported++
		}
	}

	s.logger.Info().
		Int("seed_count", len(coupons)).
		Int("imported", imported).
		Msg("coupon import finished")

	return imported, nil
}
