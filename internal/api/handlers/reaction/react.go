package reaction

import (
	"net/http"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/api/middleware"
	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
)

// ReactRequest is the body of a vote
type ReactRequest struct {
	Value *int `json:"value"`
	// ClientID is an explicit anonymous id, equivalent to the X-Client-ID
	// header. Ignored for authenticated callers.
	ClientID *string `json:"client_id,omitempty"`
}

// ReactHandler casts, switches or retracts the caller's vote
type ReactHandler struct {
	service reactions.Service
	kind    reactions.SubjectKind
}

// NewReactHandler creates a handler for subjects of kind
func NewReactHandler(service reactions.Service, kind reactions.SubjectKind) *ReactHandler {
	return &ReactHandler{service: service, kind: kind}
}

// HandleReact serves PUT /api/{places|gallery}/{id}/react
//
// Request body: { "value": 1 | -1, "client_id"?: string }. Repeating the
// current vote clears it.
func (h *ReactHandler) HandleReact(w http.ResponseWriter, r *http.Request) {
	var req ReactRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.Value == nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "value is required")
		return
	}
	if *req.Value != int(reactions.Like) && *req.Value != int(reactions.Dislike) {
		handleServiceError(w, reactions.ErrInvalidVoteValue)
		return
	}

	voter, ok := middleware.GetVoter(r)
	if !ok {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Voter identity unavailable")
		return
	}
	if req.ClientID != nil && !voter.IsAuthenticated() {
		if id, err := identity.NormalizeAnonymousID(*req.ClientID); err == nil {
			voter = identity.Anonymous(id)
		}
	}

	subject := subjectFromRequest(r, h.kind)
	agg, err := h.service.Vote(r.Context(), subject, voter, reactions.Vote(*req.Value))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, agg)
}
