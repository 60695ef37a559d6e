package routes

import (
	"github.com/go-chi/chi/v5"

	"CapeTravel/internal/api/handlers/reaction"
	"CapeTravel/internal/core/reactions"
)

// RegisterReactionRoutes registers the like/dislike endpoints for places and
// gallery images. Callers must mount AuthMiddleware.ResolveVoter first.
func RegisterReactionRoutes(r chi.Router, service reactions.Service) {
	for prefix, kind := range map[string]reactions.SubjectKind{
		"/api/places":  reactions.SubjectPlace,
		"/api/gallery": reactions.SubjectGallery,
	} {
		r.Get(prefix+"/{id}/reactions", reaction.NewGetReactionsHandler(service, kind).HandleGetReactions)
		r.Put(prefix+"/{id}/react", reaction.NewReactHandler(service, kind).HandleReact)
	}
}
