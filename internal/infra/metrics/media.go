package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(mergesTotal, mergeSeconds) }

var (
	mergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_merges_total",
			Help: "Audio merge requests by audio source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	mergeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audio_merge_duration_seconds",
			Help:    "Wall time of the merge pipeline including downloads.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"source"},
	)
)

// ObserveMerge records one merge pipeline run.
func ObserveMerge(source string, elapsed time.Duration, err error) {
	mergesTotal.WithLabelValues(norm(source), outcome(err)).Inc()
	mergeSeconds.WithLabelValues(norm(source)).Observe(elapsed.Seconds())
}
