package reactions

// Resolve applies the toggle rule to a voter's existing vote:
//   - no vote         -> requested (created)
//   - same direction  -> no vote   (cleared)
//   - other direction -> requested (switched)
//
// Both stores and the client's optimistic prediction go through this function.
func Resolve(existing *Vote, requested Vote) (*Vote, Action) {
	switch {
	case existing == nil:
		return requested.Ptr(), ActionCreated
	case *existing == requested:
		return nil, ActionCleared
	default:
		return requested.Ptr(), ActionSwitched
	}
}

// Predict returns the aggregate the server will report after the requesting
// voter casts requested, assuming no concurrent votes from others.
func Predict(current Aggregate, requested Vote) Aggregate {
	next, _ := Resolve(current.Mine, requested)

	out := current.Clone()
	out.remove(current.Mine)
	out.add(next)
	out.Mine = next
	return out
}

func (a *Aggregate) add(v *Vote) {
	if v == nil {
		return
	}
	switch *v {
	case Like:
		a.Likes++
	case Dislike:
		a.Dislikes++
	}
}

func (a *Aggregate) remove(v *Vote) {
	if v == nil {
		return
	}
	switch *v {
	case Like:
		if a.Likes > 0 {
			a.Likes--
		}
	case Dislike:
		if a.Dislikes > 0 {
			a.Dislikes--
		}
	}
}
