package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	reviewHandler *handler.ReviewHandler,
	adminHandler *handler.AdminHandler,
	searchHandler *handler.SearchHandler,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Public catalogue
	mux.HandleFunc("GET /api/v1/products", productHandler.List)
	mux.HandleFunc("GET /api/v1/products/{id}", productHandler.Get)
	mux.HandleFunc("GET /api/v1/products/{id}/reviews", productHandler.ListReviews)

	// Cart
	mux.HandleFunc("GET /api/v1/cart", cartHandler.Get)
	mux.HandleFunc("DELETE /api/v1/cart", cartHandler.Clear)
	mux.HandleFunc("POST /api/v1/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/v1/cart/items/{productId}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/cart/items/{productId}", cartHandler.RemoveItem)

	// Orders
	mux.HandleFunc("POST /api/v1/orders", orderHandler.Create)
	mux.HandleFunc("GET /api/v1/orders", orderHandler.List)
	mux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.Get)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", orderHandler.Cancel)
	mux.HandleFunc("POST /api/v1/orders/{id}/payment", orderHandler.Pay)

	// Reviews
	mux.HandleFunc("POST /api/v1/products/{id}/reviews", reviewHandler.Create)
	mux.HandleFunc("PUT /api/v1/reviews/{id}", reviewHandler.Update)
	mux.HandleFunc("DELETE /api/v1/reviews/{id}", reviewHandler.Delete)

	// AI-assisted search
	mux.HandleFunc("POST /api/v1/search/image", searchHandler.ByImage)
	mux.HandleFunc("GET /api/v1/search/query", searchHandler.ByQuery)
	mux.HandleFunc("POST /api/v1/search/compare", searchHandler.Compare)

	// Admin surface, gated on the admin role
	admin := http.NewServeMux()
	admin.HandleFunc("POST /api/v1/admin/products", adminHandler.CreateProduct)
	admin.HandleFunc("PUT /api/v1/admin/products/{id}", adminHandler.UpdateProduct)
	admin.HandleFunc("GET /api/v1/admin/products/low-stock", adminHandler.LowStock)
	admin.HandleFunc("GET /api/v1/admin/orders", adminHandler.ListOrders)
	admin.HandleFunc("PUT /api/v1/admin/orders/{id}/status", adminHandler.UpdateOrderStatus)
	admin.HandleFunc("GET /api/v1/admin/stats/dashboard", adminHandler.Dashboard)
	admin.HandleFunc("GET /api/v1/admin/stats/sales", adminHandler.Sales)
	mux.Handle("/api/v1/admin/", middleware.RequireAdmin(logger)(admin))

	// Apply middleware in order: Recovery -> Logging -> CORS -> Auth
	var h http.Handler = mux
	h = middleware.Auth(logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
