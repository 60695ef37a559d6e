package catalogue

import (
	"errors"
	"net/http"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/core/catalogue"
	"CapeTravel/internal/logging"
)

func handleServiceError(w http.ResponseWriter, err error) {
	var valErr *catalogue.ValidationError
	switch {
	case errors.Is(err, catalogue.ErrNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Place not found")
	case errors.Is(err, catalogue.ErrInvalidID):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid id")
	case errors.As(err, &valErr):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", valErr.Message)
	default:
		logging.Error().Err(err).Msg("catalogue handler error")
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
