package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
	"veogallery/internal/infra"
	"veogallery/internal/providers/prompt"
	"veogallery/internal/providers/video"
	"veogallery/internal/sounds"
	"veogallery/internal/storage"
)

// Merger muxes audio onto a video and returns the result as a data URL.
type Merger interface {
	Merge(ctx context.Context, req domain.MergeRequest) (string, error)
}

// PublishService publishes a video and reports whether it runs live or demo.
type PublishService interface {
	Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error)
	Mode() string
}

// SoundCatalog lists trending sounds for a provider and region.
type SoundCatalog interface {
	Trending(ctx context.Context, provider, region, fallbackRegion string) (sounds.Result, error)
}

// App holds the services the HTTP handlers call into. Nil optional services
// make their endpoints answer 500 with a configuration message.
type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	Generator video.Generator
	Merger    Merger
	Publisher PublishService
	Storage   storage.ObjectStore
	Sounds    SoundCatalog
	Prompts   prompt.Enhancer
	Now       func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}

func (a *App) errorDetails(w http.ResponseWriter, code int, message, details string) {
	a.json(w, code, map[string]string{"error": message, "details": details})
}

// decode reads a JSON body into dst, rejecting malformed payloads with 400.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

const maxJSONBody = 64 << 20

// upstreamStatus maps an upstream failure onto the status we return.
func upstreamStatus(err error) (int, bool) {
	var up *domain.UpstreamError
	if !errors.As(err, &up) {
		return 0, false
	}
	if up.StatusCode >= 400 && up.StatusCode <= 599 {
		return up.StatusCode, true
	}
	return http.StatusBadGateway, true
}
