package handlers

import (
	"errors"
	"net/http"

	"veogallery/internal/domain"
	"veogallery/internal/media"
)

type mergeResponse struct {
	DataURL string `json:"dataUrl"`
}

func (a *App) MergeAudio(w http.ResponseWriter, r *http.Request) {
	var req domain.MergeRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Merger == nil {
		a.error(w, http.StatusInternalServerError, "Media merging is not configured")
		return
	}
	dataURL, err := a.Merger.Merge(r.Context(), req)
	if err != nil {
		var (
			fetchErr *media.FetchError
			procErr  *media.ProcessError
		)
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			a.error(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &fetchErr):
			a.error(w, http.StatusBadRequest, fetchErr.Error())
		case errors.As(err, &procErr):
			a.json(w, http.StatusInternalServerError, map[string]any{
				"error":    "Failed to merge audio",
				"details":  procErr.Error(),
				"exitCode": procErr.ExitCode,
			})
		case errors.Is(err, domain.ErrNotConfigured):
			a.errorDetails(w, http.StatusInternalServerError, "Media merging is not configured", err.Error())
		default:
			a.errorDetails(w, http.StatusInternalServerError, "Failed to merge audio", err.Error())
		}
		return
	}
	a.json(w, http.StatusOK, mergeResponse{DataURL: dataURL})
}
