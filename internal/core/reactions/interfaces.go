package reactions

import (
	"context"

	"CapeTravel/internal/core/identity"
)

// Service defines the business logic interface for reactions
type Service interface {
	// GetAggregate returns the tally for a subject and the voter's own vote.
	// Unknown subjects yield a zero aggregate, not an error.
	GetAggregate(ctx context.Context, subject Subject, voter identity.Voter) (*Aggregate, error)

	// Vote creates, switches or clears the voter's vote (see Resolve) and
	// returns the recomputed aggregate
	Vote(ctx context.Context, subject Subject, voter identity.Voter, value Vote) (*Aggregate, error)
}

// Repository is the authoritative (subject, voter) -> vote mapping
type Repository interface {
	// Aggregate counts all live reactions for subject and reports voter's own
	Aggregate(ctx context.Context, subject Subject, voter identity.Voter) (*Aggregate, error)

	// Apply runs Resolve for key and persists the outcome. Calls for the same
	// key are serialised; the returned aggregate reflects this call's write.
	Apply(ctx context.Context, key Key, value Vote) (*Aggregate, Action, error)
}

// SubjectValidator validates that vote subjects exist in the catalogue
type SubjectValidator interface {
	SubjectExists(ctx context.Context, subject Subject) (bool, error)
}
