package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// pruneEvery bounds how many admitted requests pass between sweeps of
// expired windows.
const pruneEvery = 256

type window struct {
	used  int
	reset time.Time
}

type limiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	windows map[string]*window
	admits  int
	now     func() time.Time
}

// take consumes one unit for key. It returns the remaining budget and the
// time the current window resets; ok is false once the budget is spent.
func (l *limiter) take(key string) (remaining int, reset time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, found := l.windows[key]
	if !found || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.per)}
		l.windows[key] = w
	}
	if w.used >= l.limit {
		return 0, w.reset, false
	}
	w.used++
	l.admits++
	if l.admits%pruneEvery == 0 {
		l.prune(now)
	}
	return l.limit - w.used, w.reset, true
}

func (l *limiter) prune(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, key)
		}
	}
}

// RateLimit admits limit requests per client IP in each fixed window of
// length per. Every route wrapped by the returned middleware draws from the
// same per-IP budget.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	l := &limiter{limit: limit, per: per, windows: make(map[string]*window), now: time.Now}
	return l.middleware
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, reset, ok := l.take(clientIPForRateLimit(r))
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			retry := int(math.Ceil(reset.Sub(l.now()).Seconds()))
			if retry < 1 {
				retry = 1
			}
			h.Set("Retry-After", strconv.Itoa(retry))
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIPForRateLimit keys on the connection address only. Forwarding
// headers are honoured solely through chi's RealIP, which the router mounts
// when the deployment sits behind a trusted proxy; reading them here again
// would let a client rotate X-Forwarded-For to reset its window.
func clientIPForRateLimit(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
