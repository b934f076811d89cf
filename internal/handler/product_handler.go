package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles public catalogue HTTP requests.
type ProductHandler struct {
	catalog service.CatalogService
	reviews service.ReviewService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(catalog service.CatalogService, reviews service.ReviewService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		reviews: reviews,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/v1/products requests with filtering and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.ProductFilter{
		Category:   q.Get("category"),
		ActiveOnly: true,
		Limit:      queryInt(q.Get("limit"), 20),
		Offset:     queryInt(q.Get("offset"), 0),
	}

	if raw := q.Get("maxPrice"); raw != "" {
		ceil, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ceil <= 0 {
			writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid maxPrice parameter", h.logger)
			return
		}
		filter.PriceCeil = &ceil
	}
	if raw := q.Get("minPrice"); raw != "" {
		floor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || floor <= 0 {
			writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Invalid minPrice parameter", h.logger)
			return
		}
		filter.PriceFloor = &floor
	}

	products, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/v1/products/{id} requests.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	product, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ListReviews handles GET /api/v1/products/{id}/reviews requests.
func (h *ProductHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	q := r.URL.Query()
	sort := model.ReviewSort{
		By:     q.Get("sortBy"),
		Desc:   q.Get("order") != "asc",
		Limit:  queryInt(q.Get("limit"), 20),
		Offset: queryInt(q.Get("offset"), 0),
	}

	reviews, err := h.reviews.List(r.Context(), id, sort)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

// queryInt parses an optional integer query parameter, falling back to def
// on absence or garbage.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
