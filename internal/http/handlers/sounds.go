package handlers

import (
	"net/http"

	"veogallery/internal/domain"
	"veogallery/internal/middleware"
)

type soundsResponse struct {
	Sounds []domain.Sound `json:"sounds"`
}

func (a *App) TrendingSounds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := a.Sounds.Trending(r.Context(), q.Get("provider"), q.Get("region"), middleware.CountryFromContext(r.Context()))
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Failed to load trending sounds")
		return
	}
	if res.CacheControl != "" {
		w.Header().Set("Cache-Control", res.CacheControl)
	}
	a.json(w, http.StatusOK, soundsResponse{Sounds: res.Sounds})
}
