package reaction

import (
	"errors"
	"net/http"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/core/reactions"
	"CapeTravel/internal/logging"
)

// handleServiceError converts service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reactions.ErrInvalidVoteValue):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidVoteValue", "value must be 1 or -1")
	case errors.Is(err, reactions.ErrInvalidSubject):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidSubject", "The subject reference is invalid")
	case errors.Is(err, reactions.ErrInvalidVoter):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidVoter", "The voter identity is invalid")
	case errors.Is(err, reactions.ErrSubjectNotFound):
		handlers.WriteError(w, http.StatusNotFound, "SubjectNotFound", "The place or image no longer exists")
	default:
		logging.Error().Err(err).Msg("reaction handler error")
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
