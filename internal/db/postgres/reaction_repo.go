package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
)

type postgresReactionRepo struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewReactionRepository creates a new PostgreSQL reaction repository
func NewReactionRepository(db *sql.DB, logger zerolog.Logger) reactions.Repository {
	return &postgresReactionRepo{db: db, logger: logger}
}

// queryRower is satisfied by both *sql.DB and *sql.Tx
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const aggregateQuery = `
	SELECT
		COUNT(*) FILTER (WHERE vote = 1),
		COUNT(*) FILTER (WHERE vote = -1),
		MAX(vote) FILTER (WHERE voter_kind = $3 AND voter_id = $4)
	FROM reactions
	WHERE subject_kind = $1 AND subject_id = $2
`

// Aggregate counts the live reactions on subject in a single query
func (r *postgresReactionRepo) Aggregate(ctx context.Context, subject reactions.Subject, voter identity.Voter) (*reactions.Aggregate, error) {
	agg, err := scanAggregate(ctx, r.db, subject, voter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reactions: %w", err)
	}
	return agg, nil
}

// Apply resolves and persists a vote inside one transaction. The key is
// serialised with a transaction-scoped advisory lock, so votes on different
// keys never wait on each other.
func (r *postgresReactionRepo) Apply(ctx context.Context, key reactions.Key, value reactions.Vote) (*reactions.Aggregate, reactions.Action, error) {
	if err := value.Validate(); err != nil {
		return nil, "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.Warn().Err(rollbackErr).Msg("failed to rollback transaction")
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		return nil, "", fmt.Errorf("failed to lock reaction key: %w", err)
	}

	var existing *reactions.Vote
	var current int16
	err = tx.QueryRowContext(ctx, `
		SELECT vote FROM reactions
		WHERE subject_kind = $1 AND subject_id = $2 AND voter_kind = $3 AND voter_id = $4
	`, string(key.Subject.Kind), key.Subject.ID, string(key.Voter.Kind), key.Voter.ID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, "", fmt.Errorf("failed to get existing reaction: %w", err)
	default:
		existing = reactions.Vote(current).Ptr()
	}

	next, action := reactions.Resolve(existing, value)

	switch action {
	case reactions.ActionCreated:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reactions (subject_kind, subject_id, voter_kind, voter_id, vote, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`, string(key.Subject.Kind), key.Subject.ID, string(key.Voter.Kind), key.Voter.ID, int16(*next))
	case reactions.ActionSwitched:
		_, err = tx.ExecContext(ctx, `
			UPDATE reactions SET vote = $5, updated_at = NOW()
			WHERE subject_kind = $1 AND subject_id = $2 AND voter_kind = $3 AND voter_id = $4
		`, string(key.Subject.Kind), key.Subject.ID, string(key.Voter.Kind), key.Voter.ID, int16(*next))
	case reactions.ActionCleared:
		_, err = tx.ExecContext(ctx, `
			DELETE FROM reactions
			WHERE subject_kind = $1 AND subject_id = $2 AND voter_kind = $3 AND voter_id = $4
		`, string(key.Subject.Kind), key.Subject.ID, string(key.Voter.Kind), key.Voter.ID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to %s reaction: %w", action, err)
	}

	agg, err := scanAggregate(ctx, tx, key.Subject, key.Voter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to aggregate reactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return agg, action, nil
}

func scanAggregate(ctx context.Context, q queryRower, subject reactions.Subject, voter identity.Voter) (*reactions.Aggregate, error) {
	var agg reactions.Aggregate
	var mine sql.NullInt16
	err := q.QueryRowContext(ctx, aggregateQuery,
		string(subject.Kind), subject.ID, string(voter.Kind), voter.ID,
	).Scan(&agg.Likes, &agg.Dislikes, &mine)
	if err != nil {
		return nil, err
	}
	if mine.Valid {
		agg.Mine = reactions.Vote(mine.Int16).Ptr()
	}
	return &agg, nil
}
