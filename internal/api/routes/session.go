package routes

import (
	"github.com/go-chi/chi/v5"

	"CapeTravel/internal/api/handlers/session"
	"CapeTravel/internal/api/middleware"
)

// RegisterSessionRoutes registers GET /api/auth/me
func RegisterSessionRoutes(r chi.Router, authMiddleware *middleware.AuthMiddleware) {
	r.With(authMiddleware.RequireAuth).Get("/api/auth/me", session.HandleMe)
}
