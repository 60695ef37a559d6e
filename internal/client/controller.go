package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
)

// DefaultLoadConcurrency bounds concurrent aggregate fetches per load
const DefaultLoadConcurrency = 8

// ReactionAPI is the remote reaction store a Controller drives
type ReactionAPI interface {
	GetAggregate(ctx context.Context, subject reactions.Subject, caller Caller) (*reactions.Aggregate, error)
	Vote(ctx context.Context, subject reactions.Subject, caller Caller, value reactions.Vote) (*reactions.Aggregate, error)
}

// SessionSource returns the surface's current session token, or "" when
// nobody is signed in
type SessionSource func() string

// Phase is where a subject sits in the vote lifecycle
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSettled Phase = "settled"
)

// View is what a surface should display for one subject
type View struct {
	Phase     Phase               `json:"phase"`
	Aggregate reactions.Aggregate `json:"aggregate"`
	InFlight  bool                `json:"in_flight"`
}

type subjectState struct {
	optimistic reactions.Aggregate
	settled    reactions.Aggregate
	phase      Phase
	hasSettled bool
}

func (s *subjectState) display() reactions.Aggregate {
	if s.phase == PhasePending {
		return s.optimistic.Clone()
	}
	return s.settled.Clone()
}

func (s *subjectState) settle(agg reactions.Aggregate) {
	s.settled = agg.Clone()
	s.hasSettled = true
	s.optimistic = reactions.Aggregate{}
	s.phase = PhaseSettled
}

func (s *subjectState) revert() {
	s.optimistic = reactions.Aggregate{}
	if s.hasSettled {
		s.phase = PhaseSettled
	} else {
		s.phase = PhaseIdle
	}
}

// Controller holds the reaction state of one UI surface: the subjects it
// shows, their last known aggregates and any votes in flight.
type Controller struct {
	api      ReactionAPI
	identity *identity.Provider
	session  SessionSource
	states   map[reactions.Subject]*subjectState
	active   map[reactions.Subject]struct{}
	// survives reloads that prune states
	inFlight map[reactions.Subject]struct{}
	logger   zerolog.Logger

	mu          sync.Mutex
	generation  uint64
	concurrency int
}

// NewController creates a controller. session may be nil for surfaces that
// never sign in; concurrency <= 0 uses DefaultLoadConcurrency.
func NewController(api ReactionAPI, provider *identity.Provider, session SessionSource, concurrency int, logger zerolog.Logger) *Controller {
	if concurrency <= 0 {
		concurrency = DefaultLoadConcurrency
	}
	return &Controller{
		api:         api,
		identity:    provider,
		session:     session,
		states:      make(map[reactions.Subject]*subjectState),
		active:      make(map[reactions.Subject]struct{}),
		inFlight:    make(map[reactions.Subject]struct{}),
		logger:      logger,
		concurrency: concurrency,
	}
}

func (c *Controller) resolveCaller(ctx context.Context) Caller {
	token := ""
	if c.session != nil {
		token = c.session()
	}
	voter := c.identity.ResolveIdentity(ctx, token)
	if !voter.IsAuthenticated() {
		token = ""
	}
	return Caller{Voter: voter, SessionToken: token}
}

// LoadAggregates replaces the active subject set with subjects and fetches
// every aggregate under one resolved identity. A subject whose fetch fails
// is reported with a zero aggregate.
//
// If ctx is cancelled or another load starts before this one finishes, the
// results are discarded and an error is returned instead.
func (c *Controller) LoadAggregates(ctx context.Context, subjects []reactions.Subject) (map[reactions.Subject]reactions.Aggregate, error) {
	unique := make([]reactions.Subject, 0, len(subjects))
	seen := make(map[reactions.Subject]struct{}, len(subjects))
	for _, s := range subjects {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.active = seen
	for subject := range c.states {
		if _, ok := seen[subject]; !ok {
			delete(c.states, subject)
		}
	}
	c.mu.Unlock()

	caller := c.resolveCaller(ctx)

	results := make([]reactions.Aggregate, len(unique))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, subject := range unique {
		g.Go(func() error {
			agg, err := c.api.GetAggregate(ctx, subject, caller)
			if err != nil {
				c.logger.Warn().Err(err).Str("subject", subject.String()).Msg("aggregate fetch failed, showing zero")
				results[i] = reactions.Aggregate{}
				return nil
			}
			results[i] = agg.Clone()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil, ErrLoadSuperseded
	}

	out := make(map[reactions.Subject]reactions.Aggregate, len(unique))
	for i, subject := range unique {
		st := c.stateLocked(subject)
		st.settle(results[i])
		out[subject] = results[i].Clone()
	}
	return out, nil
}

// CastVote applies the toggle prediction immediately, writes the vote and
// settles on the server's aggregate. On failure the subject returns to its
// last settled aggregate, which is returned together with the error.
//
// Only one vote per subject may be in flight; a second one fails with
// ErrVoteInFlight without touching state.
func (c *Controller) CastVote(ctx context.Context, subject reactions.Subject, value reactions.Vote) (reactions.Aggregate, error) {
	if err := value.Validate(); err != nil {
		return reactions.Aggregate{}, err
	}
	if err := subject.Validate(); err != nil {
		return reactions.Aggregate{}, err
	}

	c.mu.Lock()
	c.active[subject] = struct{}{}
	if _, busy := c.inFlight[subject]; busy {
		c.mu.Unlock()
		return reactions.Aggregate{}, fmt.Errorf("%w: %s", ErrVoteInFlight, subject)
	}
	st := c.stateLocked(subject)
	st.optimistic = reactions.Predict(st.display(), value)
	st.phase = PhasePending
	c.inFlight[subject] = struct{}{}
	c.mu.Unlock()

	caller := c.resolveCaller(ctx)
	agg, err := c.api.Vote(ctx, subject, caller, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, subject)

	// The surface dropped the subject while the write was outstanding.
	current, tracked := c.states[subject]
	if !tracked || current != st {
		if err != nil {
			return reactions.Aggregate{}, err
		}
		return agg.Clone(), nil
	}

	if err != nil {
		st.revert()
		c.logger.Debug().Err(err).Str("subject", subject.String()).Msg("vote failed, reverted")
		return st.display(), err
	}
	st.settle(*agg)
	return st.display(), nil
}

// View returns the aggregate to display for subject. ok is false for
// subjects the controller is not tracking.
func (c *Controller) View(subject reactions.Subject) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[subject]
	st, ok := c.states[subject]
	if !ok {
		return View{Phase: PhaseIdle, InFlight: busy}, false
	}
	return View{Phase: st.phase, Aggregate: st.display(), InFlight: busy}, true
}

// Active returns the subjects of the most recent load plus any voted on since
func (c *Controller) Active() []reactions.Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]reactions.Subject, 0, len(c.active))
	for s := range c.active {
		out = append(out, s)
	}
	return out
}

func (c *Controller) stateLocked(subject reactions.Subject) *subjectState {
	st, ok := c.states[subject]
	if !ok {
		st = &subjectState{phase: PhaseIdle}
		c.states[subject] = st
	}
	return st
}
