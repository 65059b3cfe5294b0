package handlers

import (
	"net/http"
	"time"
)

var endpointDocs = map[string]string{
	"/api/generate":           "POST - Start a video generation job",
	"/api/jobs/{id}":          "GET - Check job status",
	"/api/upload-to-gcs":      "POST - Upload a video to object storage",
	"/api/publish-to-youtube": "POST - Publish a video to YouTube",
	"/api/merge-audio":        "POST - Merge an audio track into a video",
	"/api/trending-sounds":    "GET - List trending sounds",
	"/api/enhance-prompt":     "POST - Rewrite a prompt for video generation",
	"/api/health":             "GET - This health check",
}

type healthConfig struct {
	HasBackendBase        bool   `json:"hasBackendBase"`
	HasYouTubeCredentials bool   `json:"hasYouTubeCredentials"`
	HasGCSConfig          bool   `json:"hasGCSConfig"`
	GenerationMode        string `json:"generationMode"`
	PublishMode           string `json:"publishMode"`
	JobStore              string `json:"jobStore"`
	StorageProvider       string `json:"storageProvider"`
	PollIntervalMS        int64  `json:"pollIntervalMs"`
}

type healthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Environment string            `json:"environment"`
	Endpoints   map[string]string `json:"endpoints"`
	Config      healthConfig      `json:"config"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Status:      "OK",
		Timestamp:   a.now().UTC().Format(time.RFC3339Nano),
		Environment: "unknown",
		Endpoints:   endpointDocs,
	}
	if a.Generator != nil {
		res.Config.GenerationMode = a.Generator.Mode()
	}
	if a.Publisher != nil {
		res.Config.PublishMode = a.Publisher.Mode()
	}
	res.Config.PollIntervalMS = a.pollInterval().Milliseconds()
	if cfg := a.Config; cfg != nil {
		res.Environment = cfg.AppEnv
		res.Config.HasBackendBase = cfg.GenerationBackendURL != ""
		res.Config.HasYouTubeCredentials = cfg.HasYouTubeCredentials()
		res.Config.HasGCSConfig = cfg.GCSProjectID != "" && cfg.GCSBucketName != ""
		res.Config.JobStore = cfg.JobStore
		res.Config.StorageProvider = cfg.StorageProvider
	}
	a.json(w, http.StatusOK, res)
}
