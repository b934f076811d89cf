package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes data wrapped in the success envelope.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.OK(data))
}

// writeErrorCode writes a failure envelope with an explicit code.
func writeErrorCode(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Fail(code, message))
}

// statusForCode maps domain error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidInput, model.ErrCodeInvalidJSON, model.ErrCodeEmptyCart:
		return http.StatusBadRequest
	case model.ErrCodeInsufficientStock, model.ErrCodeInvalidTransition, model.ErrCodeDuplicateReview:
		return http.StatusConflict
	case model.ErrCodeForbidden, model.ErrCodeReviewNotAllowed:
		return http.StatusForbidden
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeUpstreamService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps a service error onto the envelope. Domain errors
// keep their code and message; everything else is an opaque internal error.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeErrorCode(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected service error")
	writeErrorCode(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error", logger)
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}

// requireIdentity fetches the caller identity, answering 401 when the auth
// middleware did not attach one.
func requireIdentity(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (middleware.Identity, bool) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required", logger)
	}
	return ident, ok
}

// pathUUID parses a path wildcard as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, model.NewInvalidInputError("Invalid " + name + " format")
	}
	return id, nil
}
