package reactions

import (
	"strings"
	"time"

	"CapeTravel/internal/core/identity"
)

// SubjectKind names the kind of entity a reaction is attached to
type SubjectKind string

const (
	SubjectPlace   SubjectKind = "place"
	SubjectGallery SubjectKind = "gallery"
)

// Valid reports whether k is a known subject kind
func (k SubjectKind) Valid() bool {
	return k == SubjectPlace || k == SubjectGallery
}

// Subject identifies a votable entity. ID is opaque to this package.
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   string      `json:"id"`
}

// Validate checks the subject reference is well formed
func (s Subject) Validate() error {
	if !s.Kind.Valid() || strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSubject
	}
	return nil
}

func (s Subject) String() string {
	return string(s.Kind) + ":" + s.ID
}

// Vote is a single voter's reaction: +1 like, -1 dislike
type Vote int8

const (
	Like    Vote = 1
	Dislike Vote = -1
)

// Validate rejects anything but Like or Dislike
func (v Vote) Validate() error {
	if v != Like && v != Dislike {
		return ErrInvalidVoteValue
	}
	return nil
}

func (v Vote) String() string {
	switch v {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return "invalid"
	}
}

// Ptr returns a pointer to a copy of v
func (v Vote) Ptr() *Vote {
	return &v
}

// Key is the dedup key of a reaction record
type Key struct {
	Subject Subject
	Voter   identity.Voter
}

func (k Key) String() string {
	return k.Subject.String() + "/" + k.Voter.String()
}

// Reaction is a live vote record
type Reaction struct {
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
	Subject   Subject        `json:"subject"`
	Voter     identity.Voter `json:"voter"`
	Vote      Vote           `json:"vote" db:"vote"`
}

// Aggregate is the derived tally for a subject plus the requesting voter's
// own vote. It is computed on read and never stored.
type Aggregate struct {
	Mine     *Vote `json:"mine"`
	Likes    int   `json:"likes"`
	Dislikes int   `json:"dislikes"`
}

// MineValue returns the requesting voter's vote, or 0 when absent
func (a Aggregate) MineValue() Vote {
	if a.Mine == nil {
		return 0
	}
	return *a.Mine
}

// Clone returns a deep copy of a
func (a Aggregate) Clone() Aggregate {
	out := a
	if a.Mine != nil {
		out.Mine = a.Mine.Ptr()
	}
	return out
}

// Action describes what a vote did to the voter's record
type Action string

const (
	ActionCreated  Action = "created"
	ActionCleared  Action = "cleared"
	ActionSwitched Action = "switched"
)
