package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSlot struct {
	loadErr  error
	storeErr error
	stores   int
}

func (s *failingSlot) Load(_ context.Context) (string, error) { return "", s.loadErr }

func (s *failingSlot) Store(_ context.Context, _ string) error {
	s.stores++
	return s.storeErr
}

func TestProvider_GetOrCreateAnonymousID_Stable(t *testing.T) {
	slot := NewMemorySlot()
	p := NewProvider(slot, nil, zerolog.Nop())
	ctx := context.Background()

	first := p.GetOrCreateAnonymousID(ctx)
	second := p.GetOrCreateAnonymousID(ctx)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	stored, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, stored, "generated id must be persisted")
}

func TestProvider_GetOrCreateAnonymousID_ReusesPersisted(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Store(context.Background(), "visitor-123"))

	p := NewProvider(slot, nil, zerolog.Nop())
	assert.Equal(t, "visitor-123", p.GetOrCreateAnonymousID(context.Background()))
}

func TestProvider_GetOrCreateAnonymousID_RepeatVisit(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	first := NewProvider(slot, nil, zerolog.Nop()).GetOrCreateAnonymousID(ctx)
	second := NewProvider(slot, nil, zerolog.Nop()).GetOrCreateAnonymousID(ctx)

	assert.Equal(t, first, second)
}

func TestProvider_GetOrCreateAnonymousID_Concurrent(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()
	providers := []*Provider{
		NewProvider(slot, nil, zerolog.Nop()),
		NewProvider(slot, nil, zerolog.Nop()),
	}

	const callers = 64
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = providers[i%2].GetOrCreateAnonymousID(ctx)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestProvider_GetOrCreateAnonymousID_ReplacesMalformed(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Store(context.Background(), "has space"))

	p := NewProvider(slot, nil, zerolog.Nop())
	id := p.GetOrCreateAnonymousID(context.Background())

	assert.NotEqual(t, "has space", id)
	stored, _ := slot.Load(context.Background())
	assert.Equal(t, id, stored)
}

func TestProvider_GetOrCreateAnonymousID_SlotFailure(t *testing.T) {
	slot := &failingSlot{loadErr: errors.New("disk gone"), storeErr: errors.New("disk gone")}
	p := NewProvider(slot, nil, zerolog.Nop())
	ctx := context.Background()

	first := p.GetOrCreateAnonymousID(ctx)
	second := p.GetOrCreateAnonymousID(ctx)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "id must stay stable for the context even when persistence fails")
	assert.Equal(t, 1, slot.stores)
}

func TestProvider_ResolveIdentity(t *testing.T) {
	verifier := SessionVerifierFunc(func(_ context.Context, token string) (string, error) {
		switch token {
		case "good":
			return "42", nil
		case "down":
			return "", ErrIdentityUnavailable
		default:
			return "", ErrInvalidSession
		}
	})

	tests := []struct {
		name  string
		token string
		kind  Kind
		id    string
	}{
		{name: "valid session", token: "good", kind: KindUser, id: "42"},
		{name: "no session", token: "", kind: KindAnonymous},
		{name: "rejected session", token: "forged", kind: KindAnonymous},
		{name: "verifier unavailable", token: "down", kind: KindAnonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewMemorySlot()
			p := NewProvider(slot, verifier, zerolog.Nop())

			voter := p.ResolveIdentity(context.Background(), tt.token)

			assert.Equal(t, tt.kind, voter.Kind)
			if tt.kind == KindUser {
				assert.Equal(t, tt.id, voter.ID)
				return
			}
			assert.Equal(t, p.GetOrCreateAnonymousID(context.Background()), voter.ID)
		})
	}
}

func TestProvider_ResolveIdentity_NoVerifier(t *testing.T) {
	p := NewProvider(nil, nil, zerolog.Nop())
	voter := p.ResolveIdentity(context.Background(), "anything")
	assert.Equal(t, KindAnonymous, voter.Kind)
	assert.NoError(t, voter.Validate())
}

func TestNewAnonymousID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewAnonymousID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}

		normalized, err := NormalizeAnonymousID(id)
		require.NoError(t, err)
		assert.Equal(t, id, normalized)

		// base32, 5 bits per character
		assert.GreaterOrEqual(t, len(id)*5, 128)
	}
}

func TestNormalizeAnonymousID(t *testing.T) {
	id, err := NormalizeAnonymousID("  3f2a-visitor  ")
	require.NoError(t, err)
	assert.Equal(t, "3f2a-visitor", id)

	for _, raw := range []string{"", "   ", "two words", "tab\there", string(make([]byte, MaxAnonymousIDLength+1))} {
		_, err := NormalizeAnonymousID(raw)
		assert.ErrorIs(t, err, ErrInvalidAnonymousID, "raw=%q", raw)
	}
}

func TestVoter_Validate(t *testing.T) {
	assert.NoError(t, Authenticated("7").Validate())
	assert.NoError(t, Anonymous("abc").Validate())
	assert.ErrorIs(t, Authenticated(" ").Validate(), ErrInvalidVoter)
	assert.ErrorIs(t, Anonymous("").Validate(), ErrInvalidAnonymousID)
	assert.ErrorIs(t, Voter{Kind: "robot", ID: "x"}.Validate(), ErrInvalidVoter)
	assert.Equal(t, "user:7", Authenticated("7").String())
}
