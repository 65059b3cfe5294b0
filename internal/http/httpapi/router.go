package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"veogallery/internal/http/handlers"
	"veogallery/internal/middleware"
)

// Options configures the router's cross-cutting middleware.
type Options struct {
	CORSOrigins     []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	// TrustProxyHeaders mounts chi's RealIP so the client address (and with it
	// the rate limit key) comes from X-Forwarded-For or X-Real-IP. Enable it
	// only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	// StaticDir is served under /static when the local object store is used.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.Region(opts.CountryLookup),
	)

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if opts.RateLimitPerMin > 0 {
		rl := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)
		limited = func(h http.HandlerFunc) http.Handler { return rl(h) }
	}

	routes := func(r chi.Router) {
		r.Method(http.MethodPost, "/generate", limited(app.Generate))
		r.Get("/jobs/{id}", app.JobStatus)
		r.Method(http.MethodPost, "/upload-to-gcs", limited(app.UploadVideo))
		r.Method(http.MethodPost, "/publish-to-youtube", limited(app.PublishVideo))
		r.Method(http.MethodPost, "/merge-audio", limited(app.MergeAudio))
		r.Get("/trending-sounds", app.TrendingSounds)
		r.Post("/enhance-prompt", app.EnhancePrompt)
		r.Get("/health", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
	}
	routes(r)
	r.Route("/api", routes)

	r.Method(http.MethodGet, "/metrics", app.Metrics())

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	return r
}
