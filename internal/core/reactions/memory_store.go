package reactions

import (
	"context"
	"sync"
	"sync/atomic"

	"CapeTravel/internal/core/identity"
)

// MemoryStore is an in-process Repository. Each (subject, voter) key owns
// its own mutex; there is no lock shared across keys.
type MemoryStore struct {
	subjects sync.Map // Subject -> *subjectVotes
}

type subjectVotes struct {
	voters sync.Map // identity.Voter -> *voteSlot
}

type voteSlot struct {
	mu   sync.Mutex
	vote atomic.Int32 // 0 when the voter holds no vote
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Aggregate counts the live votes on subject
func (m *MemoryStore) Aggregate(_ context.Context, subject Subject, voter identity.Voter) (*Aggregate, error) {
	v, ok := m.subjects.Load(subject)
	if !ok {
		return &Aggregate{}, nil
	}
	return v.(*subjectVotes).aggregate(voter, nil), nil
}

// Apply resolves and stores value for key under the key's own lock
func (m *MemoryStore) Apply(_ context.Context, key Key, value Vote) (*Aggregate, Action, error) {
	if err := value.Validate(); err != nil {
		return nil, "", err
	}

	sv, _ := m.subjects.LoadOrStore(key.Subject, &subjectVotes{})
	votes := sv.(*subjectVotes)
	s, _ := votes.voters.LoadOrStore(key.Voter, &voteSlot{})
	slot := s.(*voteSlot)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	next, action := Resolve(slotVote(slot.vote.Load()), value)
	if next == nil {
		slot.vote.Store(0)
	} else {
		slot.vote.Store(int32(*next))
	}

	return votes.aggregate(key.Voter, next), action, nil
}

// aggregate tallies all slots. When mine is non-nil it is reported as the
// voter's vote instead of re-reading the voter's slot.
func (sv *subjectVotes) aggregate(voter identity.Voter, mine *Vote) *Aggregate {
	agg := &Aggregate{}
	sv.voters.Range(func(k, v any) bool {
		current := slotVote(v.(*voteSlot).vote.Load())
		agg.add(current)
		if k.(identity.Voter) == voter && mine == nil {
			agg.Mine = current
		}
		return true
	})
	if mine != nil {
		agg.Mine = mine.Ptr()
	}
	return agg
}

func slotVote(raw int32) *Vote {
	if raw == 0 {
		return nil
	}
	return Vote(raw).Ptr()
}
