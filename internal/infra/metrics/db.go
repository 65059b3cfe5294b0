package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(sqlDuration, dbPoolStats) }

var (
	sqlDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sql_query_duration_seconds",
			Help:    "Latency of marked SQL statements, by marker and outcome.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"marker", "outcome"},
	)

	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // total, idle, in_use
	)
)

func ObserveSQL(marker string, elapsed time.Duration, err error) {
	sqlDuration.WithLabelValues(marker, outcome(err)).Observe(elapsed.Seconds())
}

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}
