package repo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// storeLat records Redis round-trip duration by operation and outcome.
var storeLat = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "leaderboard_store_duration_seconds",
		Help:    "Duration of ranking store operations in seconds.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(storeLat)
}

// observe is deferred by store methods with a pointer to their named error.
func observe(op string, start time.Time, err *error) {
	result := "ok"
	if err != nil && *err != nil {
		result = "error"
	}
	storeLat.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}
