package routes

import (
	"github.com/go-chi/chi/v5"

	catalogueHandlers "CapeTravel/internal/api/handlers/catalogue"
	"CapeTravel/internal/core/catalogue"
)

// RegisterCatalogueRoutes registers the place, gallery, comment and map endpoints
func RegisterCatalogueRoutes(r chi.Router, service catalogue.Service) {
	h := catalogueHandlers.NewHandler(service)

	r.Get("/api/places/", h.HandleListPlaces)
	r.Get("/api/places/{id}", h.HandleGetPlace)
	r.Get("/api/gallery/", h.HandleListGallery)

	r.Get("/api/comments/place/{id}", h.HandleListComments)
	r.Post("/api/comments/place/{id}", h.HandleCreateComment)

	r.Get("/api/map/viewport", h.HandleViewport)
}
