package handler

import (
	"encoding/json"
	"net/http"

	"fixit-store/internal/model"
	"fixit-store/internal/service"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Apply handles GET /api/coupons/{code} requests: the shopper-side early
// usability check before a coupon is taken to checkout.
func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request, code string) {
	coupon, err := h.service.Apply(r.Context(), code)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupon)
}

// List handles GET /api/admin/coupons requests.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if coupons == nil {
		coupons = []model.Coupon{}
	}

	writeJSON(w, http.StatusOK, coupons)
}

// Create handles POST /api/admin/coupons requests.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var coupon model.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.Create(r.Context(), &coupon); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// Delete handles DELETE /api/admin/coupons/{code} requests.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.service.Delete(r.Context(), code); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
