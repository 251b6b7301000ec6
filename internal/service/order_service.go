package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixit-store/internal/model"
	"fixit-store/internal/pricing"
	"fixit-store/internal/repository"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	cartRepo    repository.CartRepository
	validate    *validatorv10.Validate
	timeout     time.Duration
	logger      zerolog.Logger
	nowFunc     func() time.Time
}

// NewOrderService creates a new order service. timeout bounds the whole
// checkout round-trip so a stalled database surfaces as an error instead of
// an indefinite wait.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	cartRepo repository.CartRepository,
	timeout time.Duration,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		cartRepo:    cartRepo,
		validate:    validatorv10.New(),
		timeout:     timeout,
		logger:      logger.With().Str("service", "order").Logger(),
		nowFunc:     time.Now,
	}
}

// validationError converts a validator failure into a user-facing domain error.
func validationError(err error) error {
	var invalid validatorv10.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		f := invalid[0]
		return model.NewDomainError(model.ErrCodeValidation,
			fmt.Sprintf("Field %s failed validation (%s)", f.Field(), f.Tag()))
	}
	return model.NewDomainError(model.ErrCodeValidation, err.Error())
}

// Checkout snapshots the session's cart into a Pending order.
func (s *orderService) Checkout(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Checkout request is required")
	}
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn().Err(err).Msg("checkout validation failed")
		return nil, validationError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// A resubmission with the same client reference returns the order the
	// first submission created instead of creating a second one.
	if req.ClientReference != nil && *req.ClientReference != "" {
		existing, err := s.orderRepo.GetByClientReference(ctx, *req.ClientReference)
		if err != nil {
			return nil, fmt.Errorf("failed to check client reference: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("order_id", existing.ID).
				Str("client_reference", *req.ClientReference).
				Msg("duplicate submission, returning existing order")
			return existing, nil
		}
	}

	cart, err := s.cartRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Lines) == 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Cart is empty")
	}

	order, err := s.createOrder(ctx, cart.Lines, orderParams{
		customerName:    req.CustomerName,
		email:           req.Email,
		phone:           req.Phone,
		address:         req.FullAddress(),
		paymentMode:     model.PaymentMode(req.PaymentMode),
		status:          model.StatusPending,
		couponCode:      req.CouponCode,
		clientReference: req.ClientReference,
	})
	if err != nil {
		// The cart is intact: nothing was cleared before the order committed.
		return nil, err
	}

	// Clear only after the order has durably committed. A failure here
	// costs a stale cart, not a lost order.
	if err := s.cartRepo.Delete(ctx, sessionID); err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Str("order_id", order.ID).
			Msg("order committed but cart clear failed")
	}

	return order, nil
}

// CreateInShopOrder is the point-of-sale path.
func (s *orderService) CreateInShopOrder(ctx context.Context, req *model.InShopOrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order request is required")
	}
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn().Err(err).Msg("in-shop order validation failed")
		return nil, validationError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lines := make([]model.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch product: %w", err)
		}
		if product == nil {
			return nil, model.ErrProductNotFound
		}
		if product.IsSoldOut {
			return nil, model.ErrSoldOut
		}
		lines = append(lines, model.CartLine{
			ProductID:    product.ID,
			Name:         product.Name,
			UnitPrice:    product.Price,
			Quantity:     item.Quantity,
			PhoneDetails: item.PhoneDetails,
			QuotedPrice:  item.QuotedPrice,
		})
	}

	// Walk-in sales skip Pending and Shipped: payment and handover happen
	// at the counter, so the order is born Completed.
	return s.createOrder(ctx, lines, orderParams{
		customerName: req.CustomerName,
		phone:        req.Phone,
		address:      "In-Shop",
		paymentMode:  model.PaymentMode(req.PaymentMode),
		status:       model.StatusCompleted,
		couponCode:   req.CouponCode,
	})
}

type orderParams struct {
	customerName    string
	email           string
	phone           string
	address         string
	paymentMode     model.PaymentMode
	status          model.OrderStatus
	couponCode      *string
	clientReference *string
}

// createOrder prices the lines, persists the order, and records coupon usage
// in the same transaction. The coupon increment runs after the order insert
// and both commit together, so usage is never charged for an order that
// failed to persist and the cap holds under concurrent redemptions.
func (s *orderService) createOrder(ctx context.Context, lines []model.CartLine, p orderParams) (*model.Order, error) {
	var coupon *model.Coupon
	var couponCode *string
	if p.couponCode != nil && *p.couponCode != "" {
		var err error
		coupon, err = resolveUsableCoupon(ctx, s.couponRepo, *p.couponCode)
		if err != nil {
			return nil, err
		}
		code := coupon.Code
		couponCode = &code
	}

	now := s.nowFunc()
	items := make([]model.CartLine, len(lines))
	copy(items, lines)

	order := &model.Order{
		ID:              model.NewOrderID(now),
		CustomerName:    p.customerName,
		Email:           p.email,
		Phone:           p.phone,
		Address:         p.address,
		Items:           items,
		Total:           pricing.DiscountedTotal(items, coupon),
		PaymentMode:     p.paymentMode,
		Status:          p.status,
		CouponCode:      couponCode,
		ClientReference: p.clientReference,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Insert(ctx, tx, order); err != nil {
		if err == model.ErrDuplicateSubmit && p.clientReference != nil {
			// Lost the race to a concurrent identical submission; the
			// deferred rollback discards this attempt and we return the
			// winner's order.
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback duplicate submission")
			}
			err = nil
			return s.orderRepo.GetByClientReference(ctx, *p.clientReference)
		}
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to insert order")
		return nil, err
	}

	if couponCode != nil {
		updated, usageErr := s.couponRepo.RecordUsage(ctx, tx, *couponCode)
		if usageErr != nil {
			// The whole order rolls back: no order, no usage charged.
			err = usageErr
			s.logger.Warn().
				Err(usageErr).
				Str("order_id", order.ID).
				Str("coupon_code", *couponCode).
				Msg("coupon usage rejected at commit time")
			return nil, usageErr
		}
		s.logger.Debug().
			Str("coupon_code", updated.Code).
			Int("times_used", updated.TimesUsed).
			Msg("coupon usage recorded")
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to commit order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Int64("total", order.Total).
		Str("payment_mode", string(order.PaymentMode)).
		Str("status", string(order.Status)).
		Int("item_count", len(order.Items)).
		Msg("order created")

	return order, nil
}

// List retrieves all orders, newest first.
func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order.
func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus moves an order forward along Pending -> Shipped -> Completed.
// Backward moves are rejected; the only way out of Completed is deletion.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Unknown status %q", status))
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Warn().
			Str("order_id", id).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("rejected status transition")
		return nil, model.ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if err == model.ErrOrderNotFound {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to update status")
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	order.Status = status
	s.logger.Info().
		Str("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}

// Delete removes an order permanently.
func (s *orderService) Delete(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if err == model.ErrOrderNotFound {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().Str("order_id", id).Msg("order deleted")
	return nil
}
