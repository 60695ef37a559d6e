package reactions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts applied votes by subject kind, voter kind and outcome.
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactions_votes_total",
			Help: "Total number of votes applied",
		},
		[]string{"subject_kind", "voter_kind", "action"},
	)

	// VoteRejectionsTotal counts votes rejected before reaching the store.
	VoteRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactions_vote_rejections_total",
			Help: "Total number of votes rejected by validation",
		},
		[]string{"reason"},
	)
)
