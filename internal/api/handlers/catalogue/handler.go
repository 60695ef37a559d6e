// Package catalogue serves the place, gallery, comment and map endpoints
package catalogue

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/core/catalogue"
)

// Handler serves the catalogue read model
type Handler struct {
	service catalogue.Service
}

// NewHandler creates a catalogue handler
func NewHandler(service catalogue.Service) *Handler {
	return &Handler{service: service}
}

// HandleListPlaces serves GET /api/places/
func (h *Handler) HandleListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.ListPlaces(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if places == nil {
		places = []*catalogue.Place{}
	}
	handlers.WriteJSON(w, http.StatusOK, places)
}

// HandleGetPlace serves GET /api/places/{id}
func (h *Handler) HandleGetPlace(w http.ResponseWriter, r *http.Request) {
	id, err := catalogue.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	detail, err := h.service.GetPlace(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, detail)
}

// HandleListGallery serves GET /api/gallery/
func (h *Handler) HandleListGallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListGallery(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if images == nil {
		images = []*catalogue.GalleryImage{}
	}
	handlers.WriteJSON(w, http.StatusOK, images)
}

// HandleListComments serves GET /api/comments/place/{id}
func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := catalogue.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	comments, err := h.service.ListComments(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if comments == nil {
		comments = []*catalogue.Comment{}
	}
	handlers.WriteJSON(w, http.StatusOK, comments)
}

// HandleCreateComment serves POST /api/comments/place/{id}
//
// Request body: { "author": "...", "content": "..." }
func (h *Handler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := catalogue.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req catalogue.CreateCommentRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, comment)
}

// HandleViewport serves GET /api/map/viewport
func (h *Handler) HandleViewport(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Viewport(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}
