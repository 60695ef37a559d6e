package reaction

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"CapeTravel/internal/core/catalogue"
	"CapeTravel/internal/core/reactions"
)

// subjectFromRequest reads the {id} route parameter. Numeric ids are stored
// in canonical form so "01" and "1" share a tally; anything else is passed
// through for the service to reject.
func subjectFromRequest(r *http.Request, kind reactions.SubjectKind) reactions.Subject {
	raw := chi.URLParam(r, "id")
	if n, err := catalogue.ParseID(raw); err == nil {
		raw = strconv.FormatInt(n, 10)
	}
	return reactions.Subject{Kind: kind, ID: raw}
}
