package service

import (
	"context"
	"fmt"

	"fixit-store/internal/model"
	"fixit-store/internal/pricing"
	"fixit-store/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService. Every mutation persists the full cart
// so a session picks up exactly where it left off.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// load returns the stored cart or a fresh empty one for the session.
func (s *cartService) load(ctx context.Context, sessionID string) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		cart = &model.Cart{SessionID: sessionID}
	}
	return cart, nil
}

// Get returns the session's cart.
func (s *cartService) Get(ctx context.Context, sessionID string) (*model.Cart, error) {
	return s.load(ctx, sessionID)
}

// AddItem puts quantity units of a product into the cart.
func (s *cartService) AddItem(ctx context.Context, sessionID, productID string, quantity int, phoneDetails string, quotedPrice *int64) (*model.Cart, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to fetch product for add")
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	if product == nil || product.IsHidden {
		return nil, model.ErrProductNotFound
	}
	if product.IsSoldOut {
		s.logger.Debug().Str("product_id", productID).Msg("add rejected: sold out")
		return nil, model.ErrSoldOut
	}

	switch product.Workflow() {
	case model.WorkflowContactOnly:
		return nil, model.ErrContactOnly
	case model.WorkflowQuote:
		if quotedPrice == nil {
			return nil, model.NewDomainError(model.ErrCodeValidation, "Quote-required product needs a quoted price")
		}
	case model.WorkflowModelSelect, model.WorkflowUniversalModel:
		if phoneDetails == "" {
			return nil, model.NewDomainError(model.ErrCodeValidation, "This product requires a device model")
		}
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := model.CartLine{
		ProductID:    product.ID,
		Name:         product.Name,
		UnitPrice:    product.Price,
		Quantity:     quantity,
		PhoneDetails: phoneDetails,
		QuotedPrice:  quotedPrice,
	}

	if existing := cart.FindLine(line.Key()); existing != nil {
		// Same product + same phone details is the same logical line.
		existing.Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, line)
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Int("line_count", len(cart.Lines)).
		Msg("item added to cart")

	return cart, nil
}

// UpdateQuantity shifts a line's quantity by delta, clamped to [1, 10].
// A line is never removed this way; RemoveItem is the only removal path.
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, lineKey string, delta int) (*model.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(lineKey)
	if line == nil {
		return nil, model.ErrCartLineNotFound
	}

	newQty := line.Quantity + delta
	if newQty < model.MinLineQuantity {
		newQty = model.MinLineQuantity
	}
	if newQty > model.MaxLineQuantity {
		newQty = model.MaxLineQuantity
	}
	line.Quantity = newQty

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveItem deletes the matching line.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, lineKey string) (*model.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := cart.Lines[:0]
	found := false
	for _, l := range cart.Lines {
		if l.Key() == lineKey {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return nil, model.ErrCartLineNotFound
	}
	cart.Lines = kept

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.cartRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Debug().Str("session_id", sessionID).Msg("cart cleared")
	return nil
}

// Quote prices the cart with an optional coupon. The same pricing functions
// produce the order total at checkout, so the figures cannot diverge.
func (s *cartService) Quote(ctx context.Context, sessionID string, couponCode *string) (*model.CartQuote, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var coupon *model.Coupon
	if couponCode != nil && *couponCode != "" {
		coupon, err = resolveUsableCoupon(ctx, s.couponRepo, *couponCode)
		if err != nil {
			return nil, err
		}
	}

	quote := pricing.Quote(cart.Lines, coupon)
	return &quote, nil
}

// resolveUsableCoupon fetches a coupon and classifies why it cannot be used,
// giving the shopper an early signal before redemption time.
func resolveUsableCoupon(ctx context.Context, repo repository.CouponRepository, code string) (*model.Coupon, error) {
	coupon, err := repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}
	if !coupon.IsActive {
		return nil, model.ErrCouponInactive
	}
	if !coupon.Usable() {
		return nil, model.ErrCouponExhausted
	}
	return coupon, nil
}
