package reactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"CapeTravel/internal/core/identity"
)

// reactionService implements the Service interface
type reactionService struct {
	repo      Repository
	validator SubjectValidator
	logger    zerolog.Logger
}

// NewService creates a new reaction service. validator may be nil, in which
// case subject existence is not checked before a vote is written.
func NewService(repo Repository, validator SubjectValidator, logger zerolog.Logger) Service {
	return &reactionService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "reactions").Logger(),
	}
}

// GetAggregate returns the tally for subject and voter's own vote
func (s *reactionService) GetAggregate(ctx context.Context, subject Subject, voter identity.Voter) (*Aggregate, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	if err := voter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoter, err)
	}

	agg, err := s.repo.Aggregate(ctx, subject, voter)
	if err != nil {
		return nil, fmt.Errorf("failed to load aggregate: %w", err)
	}
	return agg, nil
}

// Vote creates, switches or toggles off the voter's vote on subject
func (s *reactionService) Vote(ctx context.Context, subject Subject, voter identity.Voter, value Vote) (*Aggregate, error) {
	if err := value.Validate(); err != nil {
		VoteRejectionsTotal.WithLabelValues("invalid_value").Inc()
		return nil, err
	}
	if err := subject.Validate(); err != nil {
		VoteRejectionsTotal.WithLabelValues("invalid_subject").Inc()
		return nil, err
	}
	if err := voter.Validate(); err != nil {
		VoteRejectionsTotal.WithLabelValues("invalid_voter").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoter, err)
	}

	if s.validator != nil {
		exists, err := s.validator.SubjectExists(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("failed to check subject: %w", err)
		}
		if !exists {
			VoteRejectionsTotal.WithLabelValues("subject_not_found").Inc()
			return nil, ErrSubjectNotFound
		}
	}

	agg, action, err := s.repo.Apply(ctx, Key{Subject: subject, Voter: voter}, value)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).
			Str("subject", subject.String()).
			Str("voter_kind", string(voter.Kind)).
			Msg("failed to apply vote")
		return nil, fmt.Errorf("failed to apply vote: %w", err)
	}

	VotesTotal.WithLabelValues(string(subject.Kind), string(voter.Kind), string(action)).Inc()
	s.logger.Debug().
		Str("subject", subject.String()).
		Str("voter_kind", string(voter.Kind)).
		Str("action", string(action)).
		Str("value", value.String()).
		Int("likes", agg.Likes).
		Int("dislikes", agg.Dislikes).
		Msg("vote applied")

	return agg, nil
}
