package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fixit-store/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeValidation, model.ErrCodeInvalidQuantity:
		return http.StatusBadRequest
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound,
		model.ErrCodeCouponNotFound, model.ErrCodeCartLineNotFound:
		return http.StatusNotFound
	case model.ErrCodeSoldOut, model.ErrCodeContactOnly, model.ErrCodeDuplicateCoupon,
		model.ErrCodeCouponInactive, model.ErrCodeCouponExhausted,
		model.ErrCodeInvalidTransition, model.ErrCodeDuplicateSubmit:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError translates a service error into an HTTP response:
// domain errors keep their code and mapped status, anything else is an
// opaque 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal error", logger)
}
