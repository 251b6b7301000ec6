package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fixit-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	couponRepo  *MockCouponRepository
	cartRepo    *MockCartRepository
	svc         OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
		couponRepo:  new(MockCouponRepository),
		cartRepo:    new(MockCartRepository),
	}
	f.svc = NewOrderService(f.orderRepo, f.productRepo, f.couponRepo, f.cartRepo, 5*time.Second, zerolog.Nop())
	return f
}

func validCheckoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		CustomerName: "Asha Rao",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		Street:       "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		Pincode:      "560001",
		PaymentMode:  "UPI",
	}
}

func storedCart() *model.Cart {
	return &model.Cart{
		SessionID: "sess-1",
		Lines: []model.CartLine{
			{ProductID: "P001", Name: "Charger", UnitPrice: int64Ptr(500), Quantity: 2},
		},
	}
}

func TestOrderService_Checkout_Success(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	tx := new(MockTx)

	f.cartRepo.On("Get", mock.Anything, "sess-1").Return(storedCart(), nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	f.orderRepo.On("Insert", mock.Anything, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	f.cartRepo.On("Delete", mock.Anything, "sess-1").Return(nil)

	order, err := f.svc.Checkout(ctx, "sess-1", validCheckoutRequest())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.True(t, strings.HasPrefix(order.ID, "FIX-"))
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, model.PaymentUPI, order.PaymentMode)
	assert.Equal(t, int64(1000), order.Total)
	assert.Len(t, order.Items, 1)
	assert.Contains(t, order.Address, "560001")

	assert.True(t, tx.committed)
	f.cartRepo.AssertCalled(t, "Delete", mock.Anything, "sess-1")
	f.orderRepo.AssertExpectations(t)
}

func TestOrderService_Checkout_WithCoupon(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	tx := new(MockTx)

	coupon := &model.Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true}
	req := validCheckoutRequest()
	req.CouponCode = strPtr("SAVE10")

	f.cartRepo.On("Get", mock.Anything, "sess-1").Return(storedCart(), nil)
	f.couponRepo.On("GetByCode", mock.Anything, "SAVE10").Return(coupon, nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	f.orderRepo.On("Insert", mock.Anything, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.couponRepo.On("RecordUsage", mock.Anything, tx, "SAVE10").
		Return(&model.Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true, TimesUsed: 1}, nil)
	tx.On("Commit", mock.Anything).Return(nil)
	f.cartRepo.On("Delete", mock.Anything, "sess-1").Return(nil)

	order, err := f.svc.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)

	assert.Equal(t, int64(900), order.Total)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
	f.couponRepo.AssertCalled(t, "RecordUsage", mock.Anything, tx, "SAVE10")
}

func TestOrderService_Checkout_CouponRejectedAtCommitRollsBackOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	tx := new(MockTx)

	coupon := &model.Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true, MaxUses: intPtr(5), TimesUsed: 4}
	req := validCheckoutRequest()
	req.CouponCode = strPtr("SAVE10")

	f.cartRepo.On("Get", mock.Anything, "sess-1").Return(storedCart(), nil)
	f.couponRepo.On("GetByCode", mock.Anything, "SAVE10").Return(coupon, nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	f.orderRepo.On("Insert", mock.Anything, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	// Another checkout took the last use between the early check and redemption
	f.couponRepo.On("RecordUsage", mock.Anything, tx, "SAVE10").Return(nil, model.ErrCouponExhausted)
	tx.On("Rollback", mock.Anything).Return(nil)

	_, err := f.svc.Checkout(ctx, "sess-1", req)
	assert.ErrorIs(t, err, model.ErrCouponExhausted)

	assert.True(t, tx.rolledBack, "order insert must roll back with the rejected coupon")
	assert.False(t, tx.committed)
	f.cartRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_CartIntactWhenCommitFails(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	tx := new(MockTx)

	f.cartRepo.On("Get", mock.Anything, "sess-1").Return(storedCart(), nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	f.orderRepo.On("Insert", mock.Anything, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	tx.On("Commit", mock.Anything).Return(errors.New("connection reset"))
	tx.On("Rollback", mock.Anything).Return(nil)

	_, err := f.svc.Checkout(ctx, "sess-1", validCheckoutRequest())
	assert.Error(t, err)

	f.cartRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.cartRepo.On("Get", mock.Anything, "sess-1").Return(&model.Cart{SessionID: "sess-1"}, nil)

	_, err := f.svc.Checkout(ctx, "sess-1", validCheckoutRequest())
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_Checkout_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CheckoutRequest)
	}{
		{"Missing name", func(r *model.CheckoutRequest) { r.CustomerName = "" }},
		{"Bad email", func(r *model.CheckoutRequest) { r.Email = "not-an-email" }},
		{"Short phone", func(r *model.CheckoutRequest) { r.Phone = "12345" }},
		{"Bad pincode", func(r *model.CheckoutRequest) { r.Pincode = "56001" }},
		{"Non-numeric pincode", func(r *model.CheckoutRequest) { r.Pincode = "56000A" }},
		{"In-shop payment mode on shopper path", func(r *model.CheckoutRequest) { r.PaymentMode = "Cash" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			req := validCheckoutRequest()
			tt.mutate(req)

			_, err := f.svc.Checkout(context.Background(), "sess-1", req)
			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
			f.cartRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Checkout_ResubmissionReturnsExistingOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	existing := &model.Order{ID: "FIX-1-AAAAA", Status: model.StatusPending, Total: 1000}
	req := validCheckoutRequest()
	req.ClientReference = strPtr("ref-123")

	f.orderRepo.On("GetByClientReference", mock.Anything, "ref-123").Return(existing, nil)

	order, err := f.svc.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, order.ID)

	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	f.cartRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_ConcurrentDuplicateLosesRace(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	tx := new(MockTx)

	winner := &model.Order{ID: "FIX-1-AAAAA", Status: model.StatusPending}
	req := validCheckoutRequest()
	req.ClientReference = strPtr("ref-123")

	// First lookup sees nothing; the insert then collides with the winner.
	f.orderRepo.On("GetByClientReference", mock.Anything, "ref-123").Return(nil, nil).Once()
	f.cartRepo.On("Get", mock.Anything, "sess-1").Return(storedCart(), nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	f.orderRepo.On("Insert", mock.Anything, tx, mock.AnythingOfType("*model.Order")).Return(model.ErrDuplicateSubmit)
	tx.On("Rollback", mock.Anything).Return(nil)
	f.orderRepo.On("GetByClientReference", mock.Anything, "ref-123").Return(winner, nil).Once()
	f.cartRepo.On("Delete", mock.Anything, "sess-1").Return(nil)

	order, err := f.svc.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, order.ID)
	assert.True(t, tx.rolledBack)
}

func TestOrderService_CreateInShopOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	tx := new(MockTx)

	product := &model.Product{ID: "P001", Name: "Speaker", Category: model.CategorySpeakers, Price: int64Ptr(1500)}
	req := &model.InShopOrderRequest{
		CustomerName: "Walk-in",
		Phone:        "9876543210",
		Items:        []model.InShopLine{{ProductID: "P001", Quantity: 1}},
		PaymentMode:  "Cash",
	}

	f.productRepo.On("GetByID", mock.Anything, "P001").Return(product, nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	f.orderRepo.On("Insert", mock.Anything, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)

	order, err := f.svc.CreateInShopOrder(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, order.Status, "walk-in sales are born completed")
	assert.Equal(t, model.PaymentCash, order.PaymentMode)
	assert.Equal(t, "In-Shop", order.Address)
	assert.Equal(t, int64(1500), order.Total)
	f.cartRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrderService_CreateInShopOrder_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("Shopper payment mode rejected", func(t *testing.T) {
		f := newOrderFixture()
		req := &model.InShopOrderRequest{
			CustomerName: "Walk-in",
			Phone:        "9876543210",
			Items:        []model.InShopLine{{ProductID: "P001", Quantity: 1}},
			PaymentMode:  "UPI",
		}
		_, err := f.svc.CreateInShopOrder(ctx, req)
		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	})

	t.Run("Sold out product rejected", func(t *testing.T) {
		f := newOrderFixture()
		product := &model.Product{ID: "P001", Price: int64Ptr(100), IsSoldOut: true}
		f.productRepo.On("GetByID", mock.Anything, "P001").Return(product, nil)

		req := &model.InShopOrderRequest{
			CustomerName: "Walk-in",
			Phone:        "9876543210",
			Items:        []model.InShopLine{{ProductID: "P001", Quantity: 1}},
			PaymentMode:  "Card",
		}
		_, err := f.svc.CreateInShopOrder(ctx, req)
		assert.ErrorIs(t, err, model.ErrSoldOut)
		f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name        string
		from        model.OrderStatus
		to          model.OrderStatus
		expectedErr error
	}{
		{"Pending to Shipped", model.StatusPending, model.StatusShipped, nil},
		{"Pending to Completed", model.StatusPending, model.StatusCompleted, nil},
		{"Shipped to Completed", model.StatusShipped, model.StatusCompleted, nil},
		{"Shipped back to Pending", model.StatusShipped, model.StatusPending, model.ErrInvalidTransition},
		{"Completed back to Shipped", model.StatusCompleted, model.StatusShipped, model.ErrInvalidTransition},
		{"Same status", model.StatusPending, model.StatusPending, model.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			ctx := context.Background()

			f.orderRepo.On("GetByID", ctx, "FIX-1-AAAAA").Return(&model.Order{ID: "FIX-1-AAAAA", Status: tt.from}, nil)
			if tt.expectedErr == nil {
				f.orderRepo.On("UpdateStatus", ctx, "FIX-1-AAAAA", tt.to).Return(nil)
			}

			order, err := f.svc.UpdateStatus(ctx, "FIX-1-AAAAA", tt.to)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, order.Status)
		})
	}
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.UpdateStatus(context.Background(), "FIX-1-AAAAA", model.OrderStatus("Cancelled"))
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("GetByID", ctx, "missing").Return(nil, nil)

	_, err := f.svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderService_Delete(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.orderRepo.On("Delete", ctx, "FIX-1-AAAAA").Return(nil)
	assert.NoError(t, f.svc.Delete(ctx, "FIX-1-AAAAA"))

	f.orderRepo.On("Delete", ctx, "missing").Return(model.ErrOrderNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "missing"), model.ErrOrderNotFound)
}
