package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"veogallery/internal/domain"
	"veogallery/internal/jobs"
)

type jobResponse struct {
	JobID string `json:"job_id"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	sanitized, err := domain.Sanitize(req)
	if err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := a.Generator.Start(r.Context(), sanitized)
	if err != nil {
		if code, ok := upstreamStatus(err); ok {
			a.error(w, code, err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("start generation failed")
		a.error(w, http.StatusInternalServerError, "Failed to start generation")
		return
	}
	a.json(w, http.StatusAccepted, jobResponse{JobID: id})
}

func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	w.Header().Set("Cache-Control", "no-store")
	if id == "" {
		a.error(w, http.StatusBadRequest, "job id is required")
		return
	}
	job, err := a.Generator.Status(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.json(w, http.StatusNotFound, map[string]string{"status": "not_found", "error": "Job not found"})
		return
	case err != nil:
		if code, ok := upstreamStatus(err); ok {
			a.error(w, code, err.Error())
			return
		}
		a.Logger.Error().Err(err).Str("job_id", id).Msg("job status failed")
		a.error(w, http.StatusInternalServerError, "Failed to load job status")
		return
	}
	if !job.IsTerminal() {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(a.pollInterval().Seconds()))))
	}
	a.json(w, http.StatusOK, job.View())
}

// pollInterval is the cadence clients are told to poll unfinished jobs at.
func (a *App) pollInterval() time.Duration {
	if a.Config != nil && a.Config.PollInterval > 0 {
		return a.Config.PollInterval
	}
	return jobs.DefaultPollInterval
}
