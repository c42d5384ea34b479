package services

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes.
const (
	outcomeUpdated   = "updated"
	outcomeUnchanged = "unchanged"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

var submissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "leaderboard_submissions_total",
		Help: "Score submissions by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(submissions)
}
