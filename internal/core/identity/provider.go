package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Provider supplies the voter identity for one browsing context.
// The anonymous id is read, generated and persisted under a single mutex so
// concurrent surfaces sharing a context always agree on one id.
type Provider struct {
	slot     Slot
	verifier SessionVerifier
	logger   zerolog.Logger

	mu     sync.Mutex
	anonID string
}

// NewProvider creates a provider over slot. verifier may be nil, in which case
// every caller resolves to the anonymous identity.
func NewProvider(slot Slot, verifier SessionVerifier, logger zerolog.Logger) *Provider {
	if slot == nil {
		slot = NewMemorySlot()
	}
	return &Provider{
		slot:     slot,
		verifier: verifier,
		logger:   logger.With().Str("component", "identity").Logger(),
	}
}

// GetOrCreateAnonymousID returns the context's anonymous id, generating and
// persisting one on first use. Slot failures are logged and the generated id
// is still returned; it stays memoised so the context remains stable.
func (p *Provider) GetOrCreateAnonymousID(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.anonID != "" {
		return p.anonID
	}

	stored, err := p.slot.Load(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to load anonymous id, issuing a new one")
	} else if id, normErr := NormalizeAnonymousID(stored); normErr == nil {
		p.anonID = id
		return p.anonID
	} else if stored != "" {
		p.logger.Warn().Str("stored", stored).Msg("discarding malformed anonymous id")
	}

	id := NewAnonymousID()
	if atomic, ok := p.slot.(AtomicSlot); ok && stored == "" {
		winner, err := atomic.LoadOrStore(ctx, id)
		if err != nil {
			p.logger.Warn().Err(err).Msg("failed to persist anonymous id")
		} else if normalized, normErr := NormalizeAnonymousID(winner); normErr == nil {
			id = normalized
		}
	} else if err := p.slot.Store(ctx, id); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist anonymous id")
	}

	p.anonID = id
	p.logger.Debug().Str("anon_id", id).Msg("issued anonymous id")
	return p.anonID
}

// ResolveIdentity returns Authenticated(userID) when sessionToken verifies,
// otherwise the context's anonymous identity. It never fails.
func (p *Provider) ResolveIdentity(ctx context.Context, sessionToken string) Voter {
	token := strings.TrimSpace(sessionToken)
	if token != "" && p.verifier != nil {
		userID, err := p.verifier.VerifySession(ctx, token)
		switch {
		case err == nil && userID != "":
			return Authenticated(userID)
		case errors.Is(err, ErrIdentityUnavailable):
			p.logger.Warn().Err(err).Msg("session resolution unavailable, voting anonymously")
		case err != nil:
			p.logger.Debug().Err(err).Msg("session rejected, voting anonymously")
		}
	}
	return Anonymous(p.GetOrCreateAnonymousID(ctx))
}
