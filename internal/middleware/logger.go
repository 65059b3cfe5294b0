package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// statusRecorder captures what the handler wrote so the access log can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wrote {
		sr.status = code
		sr.wrote = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	if !sr.wrote {
		sr.status = http.StatusOK
		sr.wrote = true
	}
	n, err := sr.ResponseWriter.Write(p)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// quietPaths are scraped or probed often enough to drown real traffic, so
// successful hits are logged at debug.
var quietPaths = map[string]bool{
	"/health":     true,
	"/api/health": true,
	"/metrics":    true,
}

// Logger writes one access log line per request. Server errors log at error,
// client errors at warn.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			var ev *zerolog.Event
			switch {
			case sr.status >= http.StatusInternalServerError:
				ev = l.Error()
			case sr.status >= http.StatusBadRequest:
				ev = l.Warn()
			case quietPaths[r.URL.Path] || strings.HasPrefix(r.URL.Path, "/static/"):
				ev = l.Debug()
			default:
				ev = l.Info()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sr.status).
				Int("bytes", sr.bytes).
				Dur("elapsed", time.Since(start)).
				Str("client_ip", ClientIP(r)).
				Str("request_id", RequestIDFromContext(r.Context())).
				Msg("http request")
		})
	}
}
