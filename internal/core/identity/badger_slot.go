package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// DefaultBadgerKey is the key the anonymous id is stored under
const DefaultBadgerKey = "ct_client_id"

// BadgerSlot persists the anonymous id in a local BadgerDB, giving native
// surfaces a browsing context that survives restarts.
type BadgerSlot struct {
	db  *badger.DB
	key []byte
}

// NewBadgerSlot creates a slot over db. An empty key selects DefaultBadgerKey.
func NewBadgerSlot(db *badger.DB, key string) *BadgerSlot {
	if key == "" {
		key = DefaultBadgerKey
	}
	return &BadgerSlot{db: db, key: []byte(key)}
}

// OpenBadger opens (or creates) the state directory used by BadgerSlot
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store %s: %w", dir, err)
	}
	return db, nil
}

func (s *BadgerSlot) Load(_ context.Context) (string, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read anonymous id: %w", err)
	}
	return id, nil
}

func (s *BadgerSlot) Store(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, []byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to write anonymous id: %w", err)
	}
	return nil
}

// LoadOrStore stores candidate unless an id already exists. Badger's optimistic
// transactions reject a concurrent writer with ErrConflict, after which the
// winner's id is read back.
func (s *BadgerSlot) LoadOrStore(ctx context.Context, candidate string) (string, error) {
	var id string
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			id = candidate
			return txn.Set(s.key, []byte(candidate))
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrConflict) {
		return s.Load(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("failed to initialise anonymous id: %w", err)
	}
	return id, nil
}
