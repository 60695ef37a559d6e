// Package auth signs and verifies the bearer session tokens issued to
// registered users. Tokens are HS256 JWTs whose subject is the user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"CapeTravel/internal/core/identity"
)

// DefaultIssuer is the iss claim on tokens minted by this service
const DefaultIssuer = "capetravel"

// MinSecretLength is the shortest accepted HMAC secret
const MinSecretLength = 32

var (
	// ErrSecretTooShort indicates an HMAC secret below MinSecretLength bytes
	ErrSecretTooShort = fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)

	// ErrMissingSubject indicates a token without a user id
	ErrMissingSubject = errors.New("token has no subject")
)

// TokenService signs and verifies session tokens
type TokenService struct {
	now    func() time.Time
	issuer string
	secret []byte
	ttl    time.Duration
	skew   time.Duration
}

// NewTokenService creates a token service. ttl is the lifetime of minted tokens.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		skew:   30 * time.Second,
		now:    time.Now,
	}, nil
}

// Issue mints a token for userID
func (s *TokenService) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// VerifySession implements identity.SessionVerifier. Every failure wraps
// identity.ErrInvalidSession; verification is local so it is never
// unavailable.
func (s *TokenService) VerifySession(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", identity.ErrInvalidSession
	}

	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithAcceptableSkew(s.skew),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
	}
	if parsed.Subject() == "" {
		return "", fmt.Errorf("%w: %v", identity.ErrInvalidSession, ErrMissingSubject)
	}
	return parsed.Subject(), nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
