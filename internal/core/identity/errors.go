package identity

import "errors"

var (
	// ErrIdentityUnavailable indicates session resolution failed transiently.
	// Callers fall back to the anonymous identity.
	ErrIdentityUnavailable = errors.New("identity unavailable")

	// ErrInvalidSession indicates the session credential was rejected
	ErrInvalidSession = errors.New("invalid session")

	// ErrInvalidAnonymousID indicates a malformed anonymous id
	ErrInvalidAnonymousID = errors.New("invalid anonymous id")

	// ErrInvalidVoter indicates a voter identity that cannot be used as a dedup key
	ErrInvalidVoter = errors.New("invalid voter identity")
)
