package identity

import (
	"context"
	"sync"
)

// Slot is the persisted single-key store that holds a browsing context's
// anonymous id. Load returns "" with a nil error when nothing is stored yet.
type Slot interface {
	Load(ctx context.Context) (string, error)
	Store(ctx context.Context, id string) error
}

// AtomicSlot is implemented by slots that can perform the read-check-write
// of a first id in one step, so separate providers sharing the slot agree.
type AtomicSlot interface {
	Slot
	// LoadOrStore returns the stored id, or stores candidate and returns it
	LoadOrStore(ctx context.Context, candidate string) (string, error)
}

// MemorySlot keeps the anonymous id in process memory
type MemorySlot struct {
	mu sync.RWMutex
	id string
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, nil
}

func (s *MemorySlot) Store(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemorySlot) LoadOrStore(_ context.Context, candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.id = candidate
	}
	return s.id, nil
}
