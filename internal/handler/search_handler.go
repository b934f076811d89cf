package handler

import (
	"io"
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxQueryImageBytes caps the uploaded query image size.
const maxQueryImageBytes = 10 << 20

// SearchHandler handles AI-assisted catalogue search requests.
type SearchHandler struct {
	search service.SearchService
	logger zerolog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		logger: logger.With().Str("handler", "search").Logger(),
	}
}

// ByImage handles POST /api/v1/search/image requests. The query image comes
// either as a multipart upload under the "image" field, or as a stored
// product image key in a JSON body.
func (h *SearchHandler) ByImage(w http.ResponseWriter, r *http.Request) {
	topK := queryInt(r.URL.Query().Get("topK"), 10)

	var (
		hits []service.ImageSearchHit
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var image []byte
		image, err = h.readImage(r)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		hits, err = h.search.ByImage(r.Context(), image, topK)
	} else {
		var req struct {
			ImageKey string `json:"imageKey"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		if req.ImageKey == "" {
			writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Either an image upload or an imageKey is required", h.logger)
			return
		}
		hits, err = h.search.ByImageKey(r.Context(), req.ImageKey, topK)
	}
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, hits)
}

// ByQuery handles GET /api/v1/search/query requests.
func (h *SearchHandler) ByQuery(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "Query parameter q is required", h.logger)
		return
	}

	result, err := h.search.ByQuery(r.Context(), query)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Compare handles POST /api/v1/search/compare requests.
func (h *SearchHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []uuid.UUID `json:"productIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	result, err := h.search.Compare(r.Context(), req.ProductIDs)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SearchHandler) readImage(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxQueryImageBytes); err != nil {
		return nil, model.NewInvalidInputError("Invalid multipart form")
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, model.NewInvalidInputError("Image file is required")
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxQueryImageBytes))
	if err != nil {
		return nil, model.NewInvalidInputError("Could not read image upload")
	}
	return image, nil
}
