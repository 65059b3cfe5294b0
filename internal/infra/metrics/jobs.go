package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsSubmitted, jobsFinished, jobsSwept) }

var (
	jobsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_submitted_total",
			Help: "Generation jobs accepted, by generator mode.",
		},
		[]string{"mode"},
	)

	jobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_finished_total",
			Help: "Generation jobs that reached a terminal state, by mode and status.",
		},
		[]string{"mode", "status"},
	)

	jobsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_jobs_swept_total",
			Help: "Terminal jobs removed by the retention sweep.",
		},
	)
)

func IncJobSubmitted(mode string) {
	jobsSubmitted.WithLabelValues(norm(mode)).Inc()
}

func IncJobFinished(mode, status string) {
	jobsFinished.WithLabelValues(norm(mode), norm(status)).Inc()
}

func AddJobsSwept(n int) {
	if n > 0 {
		jobsSwept.Add(float64(n))
	}
}
