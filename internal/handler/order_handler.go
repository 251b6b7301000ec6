package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fixit-store/internal/model"
	"fixit-store/internal/notify"
	"fixit-store/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and admin order HTTP requests.
type OrderHandler struct {
	service  service.OrderService
	listener *notify.Listener
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, listener *notify.Listener, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		listener: listener,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "session header is required", h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.Checkout(r.Context(), sessionID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// CreateInShop handles POST /api/admin/orders/in-shop requests (point of sale).
func (h *OrderHandler) CreateInShop(w http.ResponseWriter, r *http.Request) {
	var req model.InShopOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.CreateInShopOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/admin/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/admin/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request, id string) {
	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// updateStatusRequest is the payload for moving an order's status forward.
type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/{id} requests. Deletion is
// irreversible; the interface in front of this endpoint is expected to
// confirm with the operator first.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/admin/orders/events requests: a server-sent event
// stream that ticks whenever the orders table changes. The event carries the
// changed order id, but clients should respond by re-fetching the full list.
func (h *OrderHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "streaming unsupported", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticks, unsubscribe := h.listener.Subscribe()
	defer unsubscribe()

	h.logger.Debug().Msg("order event stream opened")

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug().Msg("order event stream closed")
			return
		case id, ok := <-ticks:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: orders_changed\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}
