package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"CapeTravel/internal/core/catalogue"
)

type postgresCatalogueRepo struct {
	db *sql.DB
}

// NewCatalogueRepository creates a new PostgreSQL catalogue repository
func NewCatalogueRepository(db *sql.DB) catalogue.Repository {
	return &postgresCatalogueRepo{db: db}
}

func (r *postgresCatalogueRepo) ListPlaces(ctx context.Context) ([]*catalogue.Place, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, latitude, longitude, image_url, created_by
		FROM places
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*catalogue.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		result = append(result, place)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}
	return result, nil
}

func (r *postgresCatalogueRepo) GetPlace(ctx context.Context, id int64) (*catalogue.Place, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, latitude, longitude, image_url, created_by
		FROM places
		WHERE id = $1
	`, id)
	place, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalogue.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return place, nil
}

func (r *postgresCatalogueRepo) ListGallery(ctx context.Context) ([]*catalogue.GalleryImage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, image_url, created_by, created_at
		FROM gallery_images
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*catalogue.GalleryImage
	for rows.Next() {
		var img catalogue.GalleryImage
		var title sql.NullString
		var createdBy sql.NullInt64
		if err := rows.Scan(&img.ID, &title, &img.ImageURL, &createdBy, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		img.Title = nullStringPtr(title)
		img.CreatedBy = nullInt64Ptr(createdBy)
		result = append(result, &img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gallery: %w", err)
	}
	return result, nil
}

func (r *postgresCatalogueRepo) PlaceExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM places WHERE id = $1)`, id)
}

func (r *postgresCatalogueRepo) GalleryImageExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM gallery_images WHERE id = $1)`, id)
}

func (r *postgresCatalogueRepo) exists(ctx context.Context, query string, id int64) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return found, nil
}

// ListComments returns comments newest first
func (r *postgresCatalogueRepo) ListComments(ctx context.Context, placeID int64) ([]*catalogue.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, place_id, author, content, created_at
		FROM comments
		WHERE place_id = $1
		ORDER BY id DESC
	`, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*catalogue.Comment{}
	for rows.Next() {
		var c catalogue.Comment
		if err := rows.Scan(&c.ID, &c.PlaceID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return result, nil
}

func (r *postgresCatalogueRepo) CreateComment(ctx context.Context, comment *catalogue.Comment) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO comments (place_id, author, content, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, comment.PlaceID, comment.Author, comment.Content).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return catalogue.ErrNotFound
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (*catalogue.Place, error) {
	var p catalogue.Place
	var imageURL sql.NullString
	var createdBy sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Latitude, &p.Longitude, &imageURL, &createdBy); err != nil {
		return nil, err
	}
	p.ImageURL = nullStringPtr(imageURL)
	p.CreatedBy = nullInt64Ptr(createdBy)
	return &p, nil
}
