package service

import (
	"context"
	"testing"

	"fixit-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCouponService_Apply(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		code        string
		stored      *model.Coupon
		expectedErr error
	}{
		{
			name:   "Usable coupon",
			code:   "SAVE10",
			stored: &model.Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true},
		},
		{
			name:        "Unknown code",
			code:        "NOPE",
			stored:      nil,
			expectedErr: model.ErrCouponNotFound,
		},
		{
			name:        "Inactive coupon",
			code:        "OLD",
			stored:      &model.Coupon{Code: "OLD", DiscountPercentage: 10, IsActive: false},
			expectedErr: model.ErrCouponInactive,
		},
		{
			name:        "Exhausted coupon",
			code:        "GONE",
			stored:      &model.Coupon{Code: "GONE", DiscountPercentage: 10, IsActive: true, MaxUses: intPtr(2), TimesUsed: 2},
			expectedErr: model.ErrCouponExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			couponRepo := new(MockCouponRepository)
			svc := NewCouponService(couponRepo, zerolog.Nop())
			couponRepo.On("GetByCode", ctx, tt.code).Return(tt.stored, nil)

			coupon, err := svc.Apply(ctx, tt.code)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.code, coupon.Code)
		})
	}
}

func TestCouponService_Apply_EmptyCode(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	svc := NewCouponService(couponRepo, zerolog.Nop())

	_, err := svc.Apply(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
	couponRepo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestCouponService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		coupon model.Coupon
		valid  bool
	}{
		{"Valid", model.Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true}, true},
		{"Blank code", model.Coupon{Code: "   ", DiscountPercentage: 10}, false},
		{"Negative percentage", model.Coupon{Code: "X", DiscountPercentage: -1}, false},
		{"Over hundred percent", model.Coupon{Code: "X", DiscountPercentage: 101}, false},
		{"Zero max uses", model.Coupon{Code: "X", DiscountPercentage: 10, MaxUses: intPtr(0)}, false},
		{"Pre-used", model.Coupon{Code: "X", DiscountPercentage: 10, TimesUsed: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			couponRepo := new(MockCouponRepository)
			svc := NewCouponService(couponRepo, zerolog.Nop())
			if tt.valid {
				couponRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Coupon")).Return(nil)
			}

			err := svc.Create(context.Background(), &tt.coupon)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
				couponRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCouponService_Create_Duplicate(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	svc := NewCouponService(couponRepo, zerolog.Nop())

	couponRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Coupon")).Return(model.ErrDuplicateCoupon)

	err := svc.Create(context.Background(), &model.Coupon{Code: "SAVE10", DiscountPercentage: 10})
	assert.ErrorIs(t, err, model.ErrDuplicateCoupon)
}

func TestCouponService_Import(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	svc := NewCouponService(couponRepo, zerolog.Nop())
	ctx := context.Background()

	seed := []model.Coupon{
		{Code: "SAVE10", DiscountPercentage: 10, IsActive: true},
		{Code: "SAVE20", DiscountPercentage: 20, IsActive: true},
		{Code: "", DiscountPercentage: 5, IsActive: true}, // invalid, skipped
		{Code: "EXISTS", DiscountPercentage: 15, IsActive: true},
	}

	couponRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(c *model.Coupon) bool { return c.Code == "SAVE10" })).Return(true, nil)
	couponRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(c *model.Coupon) bool { return c.Code == "SAVE20" })).Return(true, nil)
	couponRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(c *model.Coupon) bool { return c.Code == "EXISTS" })).Return(false, nil)

	imported, err := svc.Import(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, imported, "existing and invalid codes are not counted")
	couponRepo.AssertNumberOfCalls(t, "CreateIfAbsent", 3)
}
