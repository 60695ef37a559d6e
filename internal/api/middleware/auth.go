package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"CapeTravel/internal/api/handlers"
	"CapeTravel/internal/auth"
	"CapeTravel/internal/core/identity"
)

// Context keys for storing caller information
type contextKey string

const (
	VoterKey  contextKey = "voter"
	UserIDKey contextKey = "user_id"
)

// AuthMiddleware resolves the caller's identity for every request
type AuthMiddleware struct {
	store      sessions.Store
	verifier   identity.SessionVerifier
	cookieName string
	logger     zerolog.Logger
}

// NewAuthMiddleware creates the middleware. store holds the signed visitor
// cookie; verifier checks bearer session tokens.
func NewAuthMiddleware(store sessions.Store, cookieName string, verifier identity.SessionVerifier, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		store:      store,
		verifier:   verifier,
		cookieName: cookieName,
		logger:     logger,
	}
}

// ResolveVoter injects the effective voter into the context. A verified
// bearer token yields the authenticated user; anyone else votes under the
// anonymous id they present or the one issued into their visitor cookie.
// It never rejects a request.
func (m *AuthMiddleware) ResolveVoter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slot := identity.NewRequestSlot(m.store, m.cookieName, w, r)
		provider := identity.NewProvider(slot, m.verifier, m.logger)

		voter := provider.ResolveIdentity(r.Context(), auth.BearerToken(r.Header.Get("Authorization")))

		ctx := context.WithValue(r.Context(), VoterKey, voter)
		if voter.IsAuthenticated() {
			ctx = context.WithValue(ctx, UserIDKey, voter.ID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests without a valid bearer token with 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeAuthError(w, "Missing bearer token")
			return
		}
		if m.verifier == nil {
			writeAuthError(w, "Authentication is not configured")
			return
		}

		userID, err := m.verifier.VerifySession(r.Context(), token)
		if err != nil || userID == "" {
			m.logger.Debug().Err(err).
				Str("ip", r.RemoteAddr).
				Str("path", r.URL.Path).
				Msg("auth failure")
			writeAuthError(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, VoterKey, identity.Authenticated(userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetVoter extracts the voter injected by ResolveVoter or RequireAuth
func GetVoter(r *http.Request) (identity.Voter, bool) {
	voter, ok := r.Context().Value(VoterKey).(identity.Voter)
	return voter, ok && !voter.IsZero()
}

// GetUserID extracts the authenticated user id, or "" for anonymous callers
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// SetTestVoter sets the voter in the context. Tests only.
func SetTestVoter(ctx context.Context, voter identity.Voter) context.Context {
	ctx = context.WithValue(ctx, VoterKey, voter)
	if voter.IsAuthenticated() {
		ctx = context.WithValue(ctx, UserIDKey, voter.ID)
	}
	return ctx
}

func writeAuthError(w http.ResponseWriter, message string) {
	handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", message)
}
