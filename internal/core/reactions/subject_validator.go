package reactions

import "context"

// SubjectExistsFunc is a function type that checks if a subject exists
type SubjectExistsFunc func(ctx context.Context, id string) (bool, error)

// CompositeSubjectValidator dispatches existence checks by subject kind
type CompositeSubjectValidator struct {
	placeExists   SubjectExistsFunc
	galleryExists SubjectExistsFunc
}

// NewCompositeSubjectValidator creates a validator that checks places and gallery images.
// Pass nil for either function to skip validation for that kind.
func NewCompositeSubjectValidator(placeExists, galleryExists SubjectExistsFunc) *CompositeSubjectValidator {
	return &CompositeSubjectValidator{
		placeExists:   placeExists,
		galleryExists: galleryExists,
	}
}

// SubjectExists checks the catalogue for subject
func (v *CompositeSubjectValidator) SubjectExists(ctx context.Context, subject Subject) (bool, error) {
	switch subject.Kind {
	case SubjectPlace:
		if v.placeExists != nil {
			return v.placeExists(ctx, subject.ID)
		}
		return true, nil
	case SubjectGallery:
		if v.galleryExists != nil {
			return v.galleryExists(ctx, subject.ID)
		}
		return true, nil
	default:
		return false, nil
	}
}
