package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDPropagation(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "missing header mints id", incoming: "", keep: false},
		{name: "well formed id kept", incoming: "edge-7f3a.b_01:2", keep: true},
		{name: "spaces rejected", incoming: "has space", keep: false},
		{name: "control bytes rejected", incoming: "abc\x01", keep: false},
		{name: "oversized rejected", incoming: strings.Repeat("a", maxRequestIDLen+1), keep: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var inCtx string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inCtx = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != inCtx {
				t.Fatalf("header %q differs from context %q", got, inCtx)
			}
			if tc.keep {
				if got != tc.incoming {
					t.Fatalf("request id = %q, want %q", got, tc.incoming)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("request id %q is not a uuid: %v", got, err)
			}
		})
	}
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFromContext(req.Context()); got != "" {
		t.Fatalf("RequestIDFromContext() = %q, want empty", got)
	}
}
