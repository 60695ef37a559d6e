package catalogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"CapeTravel/internal/core/reactions"
	"CapeTravel/internal/core/viewport"
)

type catalogueService struct {
	repo     Repository
	validate *validator.Validate
	fitter   viewport.Fitter
	logger   zerolog.Logger
}

// NewService creates a catalogue service
func NewService(repo Repository, fitter viewport.Fitter, logger zerolog.Logger) Service {
	return &catalogueService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		fitter:   fitter,
		logger:   logger.With().Str("component", "catalogue").Logger(),
	}
}

// NewSubjectValidator adapts svc to the reaction service's existence check
func NewSubjectValidator(svc Service) reactions.SubjectValidator {
	return reactions.NewCompositeSubjectValidator(svc.PlaceExists, svc.GalleryImageExists)
}

func (s *catalogueService) ListPlaces(ctx context.Context) ([]*Place, error) {
	places, err := s.repo.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

func (s *catalogueService) ListGallery(ctx context.Context) ([]*GalleryImage, error) {
	images, err := s.repo.ListGallery(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	return images, nil
}

// GetPlace returns the place and its comments
func (s *catalogueService) GetPlace(ctx context.Context, id int64) (*PlaceDetail, error) {
	place, err := s.repo.GetPlace(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return &PlaceDetail{Place: place, Comments: comments}, nil
}

// ListComments returns ErrNotFound for an unknown place
func (s *catalogueService) ListComments(ctx context.Context, placeID int64) ([]*Comment, error) {
	if err := s.requirePlace(ctx, placeID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// AddComment validates and appends a comment to a place
func (s *catalogueService) AddComment(ctx context.Context, placeID int64, req CreateCommentRequest) (*Comment, error) {
	req.Author = strings.TrimSpace(req.Author)
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.requirePlace(ctx, placeID); err != nil {
		return nil, err
	}

	comment := &Comment{
		PlaceID: placeID,
		Author:  req.Author,
		Content: req.Content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info().Int64("place_id", placeID).Int64("comment_id", comment.ID).Msg("comment added")
	return comment, nil
}

func (s *catalogueService) Viewport(ctx context.Context) (viewport.View, error) {
	places, err := s.repo.ListPlaces(ctx)
	if err != nil {
		return viewport.View{}, fmt.Errorf("failed to list places: %w", err)
	}
	points := make([]viewport.LatLng, 0, len(places))
	for _, p := range places {
		points = append(points, viewport.LatLng{Lat: p.Latitude, Lng: p.Longitude})
	}
	return s.fitter.Fit(points), nil
}

func (s *catalogueService) PlaceExists(ctx context.Context, id string) (bool, error) {
	n, err := ParseID(id)
	if err != nil {
		return false, nil
	}
	return s.repo.PlaceExists(ctx, n)
}

func (s *catalogueService) GalleryImageExists(ctx context.Context, id string) (bool, error) {
	n, err := ParseID(id)
	if err != nil {
		return false, nil
	}
	return s.repo.GalleryImageExists(ctx, n)
}

func (s *catalogueService) requirePlace(ctx context.Context, placeID int64) error {
	exists, err := s.repo.PlaceExists(ctx, placeID)
	if err != nil {
		return fmt.Errorf("failed to check place: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *catalogueService) validateRequest(req CreateCommentRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "min":
			return NewValidationError(field, field+" is required")
		case "max":
			return NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		}
		return NewValidationError(field, fe.Error())
	}
	return fmt.Errorf("failed to validate request: %w", err)
}

// ParseID parses a positive decimal id
func ParseID(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return n, nil
}
