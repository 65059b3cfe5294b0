package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{name: "success", path: "/generate", status: http.StatusAccepted, wantLevel: "info"},
		{name: "client error", path: "/generate", status: http.StatusBadRequest, wantLevel: "warn"},
		{name: "server error", path: "/merge-audio", status: http.StatusInternalServerError, wantLevel: "error"},
		{name: "health probe", path: "/health", status: http.StatusOK, wantLevel: "debug"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := zerolog.New(&buf).Level(zerolog.DebugLevel)
			h := RequestID(Logger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("hello"))
			})))

			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			req.RemoteAddr = "198.51.100.4:9999"
			req.Header.Set(RequestIDHeader, "trace-1")
			h.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line is not json: %v (%q)", err, buf.String())
			}
			if entry["level"] != tc.wantLevel {
				t.Fatalf("level = %v, want %s", entry["level"], tc.wantLevel)
			}
			if entry["status"] != float64(tc.status) || entry["bytes"] != float64(5) {
				t.Fatalf("status/bytes = %v/%v", entry["status"], entry["bytes"])
			}
			if entry["request_id"] != "trace-1" || entry["client_ip"] != "198.51.100.4" {
				t.Fatalf("request_id/client_ip = %v/%v", entry["request_id"], entry["client_ip"])
			}
		})
	}
}

func TestLoggerImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sounds/trending", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["status"] != float64(http.StatusOK) || entry["level"] != "info" {
		t.Fatalf("entry = %v", entry)
	}
}
