package identity

import (
	"context"
	"crypto/rand"
	"strings"
	"unicode"
)

// Kind distinguishes authenticated voters from anonymous visitors
type Kind string

const (
	KindUser      Kind = "user"
	KindAnonymous Kind = "anon"
)

// MaxAnonymousIDLength bounds client supplied anonymous ids
const MaxAnonymousIDLength = 120

// Voter is the effective identity a vote is recorded under.
// Two voters are the same voter exactly when Kind and ID are equal.
type Voter struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Authenticated returns the voter identity of a signed-in user
func Authenticated(userID string) Voter {
	return Voter{Kind: KindUser, ID: userID}
}

// Anonymous returns the voter identity of an unregistered visitor
func Anonymous(anonID string) Voter {
	return Voter{Kind: KindAnonymous, ID: anonID}
}

// IsAuthenticated reports whether the voter came from a verified session
func (v Voter) IsAuthenticated() bool {
	return v.Kind == KindUser
}

// IsZero reports whether no identity has been resolved
func (v Voter) IsZero() bool {
	return v.ID == ""
}

// Validate checks the voter is usable as a deduplication key
func (v Voter) Validate() error {
	switch v.Kind {
	case KindUser:
		if strings.TrimSpace(v.ID) == "" {
			return ErrInvalidVoter
		}
		return nil
	case KindAnonymous:
		if _, err := NormalizeAnonymousID(v.ID); err != nil {
			return err
		}
		return nil
	default:
		return ErrInvalidVoter
	}
}

func (v Voter) String() string {
	return string(v.Kind) + ":" + v.ID
}

// NewAnonymousID generates a fresh anonymous id carrying at least 128 bits
// of randomness
func NewAnonymousID() string {
	return strings.ToLower(rand.Text())
}

// NormalizeAnonymousID trims a client supplied anonymous id and rejects
// values that are empty, too long, or contain control or space characters.
func NormalizeAnonymousID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > MaxAnonymousIDLength {
		return "", ErrInvalidAnonymousID
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", ErrInvalidAnonymousID
		}
	}
	return id, nil
}

// SessionVerifier resolves a session credential to a user id.
// Implementations return ErrIdentityUnavailable when the verifier could not be
// reached and any other error when the credential itself is not valid.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (userID string, err error)
}

// SessionVerifierFunc adapts a function to SessionVerifier
type SessionVerifierFunc func(ctx context.Context, token string) (string, error)

// VerifySession calls f(ctx, token)
func (f SessionVerifierFunc) VerifySession(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}
