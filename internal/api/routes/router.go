package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"CapeTravel/internal/api/middleware"
	"CapeTravel/internal/core/catalogue"
	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
)

// Services bundles everything the router serves
type Services struct {
	Reactions      reactions.Service
	Catalogue      catalogue.Service
	AuthMiddleware *middleware.AuthMiddleware
	Logger         zerolog.Logger
	CORSOrigins    []string
}

// NewRouter builds the HTTP handler for the whole API
func NewRouter(s Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.AccessLog(s.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware(s.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	RegisterSessionRoutes(r, s.AuthMiddleware)
	RegisterCatalogueRoutes(r, s.Catalogue)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware.ResolveVoter)
		RegisterReactionRoutes(r, s.Reactions)
	})

	return r
}

// corsMiddleware allows the configured origins. A wildcard cannot be
// combined with credentials, so "*" disables them.
func corsMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowCredentials := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCredentials = false
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			identity.ClientIDHeader,
		},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}
