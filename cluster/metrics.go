package cluster

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeError      = "error"
)

var (
	joinRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matrixprofile_join_requests_total",
			Help: "Total number of join requests handled, by outcome.",
		},
		[]string{"outcome"},
	)
	joinDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matrixprofile_join_duration_seconds",
			Help:    "Duration of join computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
	joinSubsequences = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matrixprofile_join_subsequences_total",
			Help: "Total number of subsequences for which a nearest neighbor was computed.",
		},
	)
)

func init() {
	prometheus.MustRegister(joinRequests)
	prometheus.MustRegister(joinDuration)
	prometheus.MustRegister(joinSubsequences)
}
