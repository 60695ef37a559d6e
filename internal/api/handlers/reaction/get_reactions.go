package reaction

import (
	"net/http"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/api/middleware"
	"CapeTravel/internal/core/reactions"
)

// GetReactionsHandler returns a subject's tally and the caller's own vote
type GetReactionsHandler struct {
	service reactions.Service
	kind    reactions.SubjectKind
}

// NewGetReactionsHandler creates a handler for subjects of kind
func NewGetReactionsHandler(service reactions.Service, kind reactions.SubjectKind) *GetReactionsHandler {
	return &GetReactionsHandler{service: service, kind: kind}
}

// HandleGetReactions serves GET /api/{places|gallery}/{id}/reactions
//
// Response: { "likes": 3, "dislikes": 1, "mine": 1 | -1 | null }
func (h *GetReactionsHandler) HandleGetReactions(w http.ResponseWriter, r *http.Request) {
	voter, ok := middleware.GetVoter(r)
	if !ok {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Voter identity unavailable")
		return
	}

	subject := subjectFromRequest(r, h.kind)
	agg, err := h.service.GetAggregate(r.Context(), subject, voter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, agg)
}
