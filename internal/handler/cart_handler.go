package handler

import (
	"encoding/json"
	"net/http"

	"fixit-store/internal/model"
	"fixit-store/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionHeader carries the shopper's cart session id. A response always
// echoes it back so a fresh client can persist the minted id.
const SessionHeader = "X-Session-ID"

// CartHandler handles shopper cart HTTP requests.
type CartHandler struct {
	service   service.CartService
	namespace string
	logger    zerolog.Logger
}

// NewCartHandler creates a new cart handler. namespace prefixes minted
// session ids so cart rows are recognisable in storage.
func NewCartHandler(service service.CartService, namespace string, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service:   service,
		namespace: namespace,
		logger:    logger.With().Str("handler", "cart").Logger(),
	}
}

// session returns the request's session id, minting a namespaced one for
// first-time shoppers, and echoes it on the response.
func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) string {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = h.namespace + ":" + uuid.NewString()
	}
	w.Header().Set(SessionHeader, sessionID)
	return sessionID
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	cart, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// addItemRequest is the payload for adding a product to the cart.
type addItemRequest struct {
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	PhoneDetails string `json:"phoneDetails,omitempty"`
	QuotedPrice  *int64 `json:"quotedPrice,omitempty"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "productId is required", h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.service.AddItem(r.Context(), sessionID, req.ProductID, req.Quantity, req.PhoneDetails, req.QuotedPrice)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// updateQuantityRequest is the payload for shifting a line's quantity.
type updateQuantityRequest struct {
	Delta int `json:"delta"`
}

// UpdateQuantity handles PATCH /api/cart/items/{lineKey} requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request, lineKey string) {
	sessionID := h.session(w, r)

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), sessionID, lineKey, req.Delta)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{lineKey} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request, lineKey string) {
	sessionID := h.session(w, r)

	cart, err := h.service.RemoveItem(r.Context(), sessionID, lineKey)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	if err := h.service.Clear(r.Context(), sessionID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Quote handles GET /api/cart/quote requests. The optional "coupon" query
// parameter applies a coupon; an unusable one is an error, not a silent
// zero discount, so the shopper hears about exhaustion before checkout.
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var couponCode *string
	if code := r.URL.Query().Get("coupon"); code != "" {
		couponCode = &code
	}

	quote, err := h.service.Quote(r.Context(), sessionID, couponCode)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
