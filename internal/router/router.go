package router

import (
	"net/http"
	"strings"

	"fixit-store/internal/handler"
	"fixit-store/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	couponHandler *handler.CouponHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Shopper catalogue
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			productHandler.GetByID(w, r)
			return
		}
		productHandler.List(w, r)
	}
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Shopper coupon check
	mux.HandleFunc("/api/coupons/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/coupons/")
		if r.Method != http.MethodGet || code == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		couponHandler.Apply(w, r, code)
	})

	// Shopper cart
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cartHandler.Get(w, r)
		case http.MethodDelete:
			cartHandler.Clear(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/cart/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cartHandler.Quote(w, r)
	})
	mux.HandleFunc("/api/cart/items", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cartHandler.AddItem(w, r)
	})
	mux.HandleFunc("/api/cart/items/", func(w http.ResponseWriter, r *http.Request) {
		lineKey := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
		if lineKey == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			cartHandler.UpdateQuantity(w, r, lineKey)
		case http.MethodDelete:
			cartHandler.RemoveItem(w, r, lineKey)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Checkout
	mux.HandleFunc("/api/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		orderHandler.Checkout(w, r)
	})

	// Admin: orders
	mux.HandleFunc("/api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		orderHandler.List(w, r)
	})
	mux.HandleFunc("/api/admin/orders/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/admin/orders/")
		switch {
		case rest == "in-shop" && r.Method == http.MethodPost:
			orderHandler.CreateInShop(w, r)
		case rest == "events" && r.Method == http.MethodGet:
			orderHandler.Events(w, r)
		case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPatch:
			orderHandler.UpdateStatus(w, r, strings.TrimSuffix(rest, "/status"))
		case rest != "" && r.Method == http.MethodGet:
			orderHandler.GetByID(w, r, rest)
		case rest != "" && r.Method == http.MethodDelete:
			orderHandler.Delete(w, r, rest)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	// Admin: catalogue
	mux.HandleFunc("/api/admin/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			productHandler.AdminList(w, r)
		case http.MethodPost:
			productHandler.Create(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/admin/products/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/admin/products/")
		if id == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPut:
			productHandler.Update(w, r, id)
		case http.MethodDelete:
			productHandler.Delete(w, r, id)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Admin: coupons
	mux.HandleFunc("/api/admin/coupons", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			couponHandler.List(w, r)
		case http.MethodPost:
			couponHandler.Create(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/admin/coupons/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/admin/coupons/")
		if code == "" || r.Method != http.MethodDelete {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		couponHandler.Delete(w, r, code)
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> AdminAuth
	var h http.Handler = mux
	h = middleware.AdminAuth(adminAPIKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
