package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles the admin surface: catalogue management, order
// fulfilment and dashboard stats. Routes mounting it must be wrapped with
// the admin-role middleware.
type AdminHandler struct {
	catalog service.CatalogService
	orders  service.OrderService
	stats   service.StatsService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(catalog service.CatalogService, orders service.OrderService, stats service.StatsService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		orders:  orders,
		stats:   stats,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// CreateProduct handles POST /api/v1/admin/products requests.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	product, err := h.catalog.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/admin/products/{id} requests.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.UpdateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	product, err := h.catalog.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// LowStock handles GET /api/v1/admin/products/low-stock requests.
func (h *AdminHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products, err := h.catalog.LowStock(r.Context(), queryInt(q.Get("threshold"), 0), queryInt(q.Get("limit"), 0))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ListOrders handles GET /api/v1/admin/orders requests across all users.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.OrderFilter{
		Limit:  queryInt(q.Get("limit"), 20),
		Offset: queryInt(q.Get("offset"), 0),
	}
	if raw := q.Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !model.ValidOrderStatus(status) {
			writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid status parameter", h.logger)
			return
		}
		filter.Status = &status
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PUT /api/v1/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if !model.ValidOrderStatus(req.Status) {
		writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Unknown order status", h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Dashboard handles GET /api/v1/admin/stats/dashboard requests.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.Dashboard(r.Context(), period)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Sales handles GET /api/v1/admin/stats/sales requests.
func (h *AdminHandler) Sales(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}

	series, err := h.stats.Sales(r.Context(), period)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, series)
}

func (h *AdminHandler) period(w http.ResponseWriter, r *http.Request) (model.StatsPeriod, bool) {
	period := model.StatsPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = model.PeriodWeek
	}
	if !model.ValidStatsPeriod(period) {
		writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid period parameter", h.logger)
		return "", false
	}
	return period, true
}
