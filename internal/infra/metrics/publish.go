package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(publishesTotal, uploadsTotal, uploadBytes) }

var (
	publishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_publishes_total",
			Help: "Publish attempts by mode (live/demo) and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "object_uploads_total",
			Help: "Object storage uploads by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	uploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "object_upload_bytes_total",
			Help: "Bytes written to object storage by provider.",
		},
		[]string{"provider"},
	)
)

func ObservePublish(mode string, err error) {
	publishesTotal.WithLabelValues(norm(mode), outcome(err)).Inc()
}

func ObserveUpload(provider string, size int64, err error) {
	uploadsTotal.WithLabelValues(norm(provider), outcome(err)).Inc()
	if err == nil && size > 0 {
		uploadBytes.WithLabelValues(norm(provider)).Add(float64(size))
	}
}
