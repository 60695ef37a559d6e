package catalogue

import (
	"context"

	"CapeTravel/internal/core/viewport"
)

// Repository is the read side of the place/gallery/comment store.
// Catalogue CRUD lives elsewhere; this service only lists, checks existence
// and appends comments.
type Repository interface {
	ListPlaces(ctx context.Context) ([]*Place, error)
	ListGallery(ctx context.Context) ([]*GalleryImage, error)

	// GetPlace returns ErrNotFound for an unknown id
	GetPlace(ctx context.Context, id int64) (*Place, error)

	PlaceExists(ctx context.Context, id int64) (bool, error)
	GalleryImageExists(ctx context.Context, id int64) (bool, error)

	// ListComments returns the comments on a place, newest first
	ListComments(ctx context.Context, placeID int64) ([]*Comment, error)

	// CreateComment inserts comment and fills in ID and CreatedAt
	CreateComment(ctx context.Context, comment *Comment) error
}

// Service defines the business logic interface for the catalogue
type Service interface {
	ListPlaces(ctx context.Context) ([]*Place, error)
	ListGallery(ctx context.Context) ([]*GalleryImage, error)
	GetPlace(ctx context.Context, id int64) (*PlaceDetail, error)
	ListComments(ctx context.Context, placeID int64) ([]*Comment, error)
	AddComment(ctx context.Context, placeID int64, req CreateCommentRequest) (*Comment, error)

	// Viewport fits the map view over every listed place
	Viewport(ctx context.Context) (viewport.View, error)

	// PlaceExists and GalleryImageExists take the opaque subject id used by
	// reactions. Ids that do not parse are reported as missing.
	PlaceExists(ctx context.Context, id string) (bool, error)
	GalleryImageExists(ctx context.Context, id string) (bool, error)
}
