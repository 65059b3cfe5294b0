package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(soundRequests) }

var soundRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trending_sound_requests_total",
		Help: "Trending sound lookups by provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

func ObserveSounds(provider string, err error) {
	soundRequests.WithLabelValues(norm(provider), outcome(err)).Inc()
}
