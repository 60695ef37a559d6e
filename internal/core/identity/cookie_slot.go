package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	// DefaultCookieName names the signed cookie that carries the anonymous id
	DefaultCookieName = "ct_visitor"

	// ClientIDHeader lets a client present its own persisted anonymous id
	ClientIDHeader = "X-Client-ID"

	// ClientIDQueryParam is the query-string form of ClientIDHeader
	ClientIDQueryParam = "client_id"

	// MinCookieSecretLength is the minimum signing secret size
	MinCookieSecretLength = 32

	anonIDSessionKey = "anon_id"
)

// NewCookieStore creates the signed cookie store used for anonymous ids
func NewCookieStore(secret string, secure bool, maxAge time.Duration) (*sessions.CookieStore, error) {
	if len(secret) < MinCookieSecretLength {
		return nil, fmt.Errorf("cookie secret must be at least %d bytes", MinCookieSecretLength)
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// CookieSlot persists the anonymous id in a signed session cookie.
// It is bound to a single request/response pair.
type CookieSlot struct {
	store sessions.Store
	name  string
	w     http.ResponseWriter
	r     *http.Request
}

// NewCookieSlot binds store to the current request
func NewCookieSlot(store sessions.Store, name string, w http.ResponseWriter, r *http.Request) *CookieSlot {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieSlot{store: store, name: name, w: w, r: r}
}

func (s *CookieSlot) Load(_ context.Context) (string, error) {
	session, err := s.store.Get(s.r, s.name)
	if err != nil {
		return "", fmt.Errorf("failed to decode visitor cookie: %w", err)
	}
	id, _ := session.Values[anonIDSessionKey].(string)
	return id, nil
}

func (s *CookieSlot) Store(_ context.Context, id string) error {
	// A cookie that failed to decode still yields a fresh session to overwrite
	session, err := s.store.Get(s.r, s.name)
	if session == nil {
		return fmt.Errorf("failed to open visitor cookie: %w", err)
	}
	session.Values[anonIDSessionKey] = id
	if err := session.Save(s.r, s.w); err != nil {
		return fmt.Errorf("failed to save visitor cookie: %w", err)
	}
	return nil
}

// RequestSlot prefers an anonymous id the client presents explicitly and
// falls back to the visitor cookie. Newly issued ids go to the cookie.
type RequestSlot struct {
	explicit string
	cookie   *CookieSlot
}

// NewRequestSlot builds the per-request slot for r
func NewRequestSlot(store sessions.Store, cookieName string, w http.ResponseWriter, r *http.Request) *RequestSlot {
	explicit := r.Header.Get(ClientIDHeader)
	if explicit == "" {
		explicit = r.URL.Query().Get(ClientIDQueryParam)
	}
	return &RequestSlot{
		explicit: explicit,
		cookie:   NewCookieSlot(store, cookieName, w, r),
	}
}

func (s *RequestSlot) Load(ctx context.Context) (string, error) {
	if id, err := NormalizeAnonymousID(s.explicit); err == nil {
		return id, nil
	}
	return s.cookie.Load(ctx)
}

func (s *RequestSlot) Store(ctx context.Context, id string) error {
	return s.cookie.Store(ctx, id)
}
