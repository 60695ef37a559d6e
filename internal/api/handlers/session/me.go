// Package session exposes the resolved session to clients
package session

import (
	"net/http"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/api/middleware"
)

// MeResponse identifies the authenticated user
type MeResponse struct {
	ID string `json:"id"`
}

// HandleMe serves GET /api/auth/me. It runs behind RequireAuth.
func HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", "Authentication required")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, MeResponse{ID: userID})
}
