package catalogue

import "time"

// Place is a point of interest. Latitude/Longitude may be (0, 0) on records
// that were never geocoded.
type Place struct {
	ImageURL    *string `json:"image_url"`
	CreatedBy   *int64  `json:"created_by"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	ID          int64   `json:"id" db:"id"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
}

// PlaceDetail is a place with its comments, newest first
type PlaceDetail struct {
	*Place
	Comments []*Comment `json:"comments"`
}

// GalleryImage is a photo in the public gallery
type GalleryImage struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Title     *string   `json:"title"`
	CreatedBy *int64    `json:"-"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	ID        int64     `json:"id" db:"id"`
}

// Comment is an append-only note left on a place
type Comment struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	ID        int64     `json:"id" db:"id"`
	PlaceID   int64     `json:"place_id" db:"place_id"`
}

// CreateCommentRequest is the input for AddComment
type CreateCommentRequest struct {
	Author  string `json:"author" validate:"required,min=1,max=120"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
