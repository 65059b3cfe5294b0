package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"veogallery/internal/domain"
	"veogallery/internal/jobs"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host/api"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q) should fail", raw)
		}
	}
}

func TestGenerateAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req domain.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt != "a boat" {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"job_id":"abc"}`))
	})
	mux.HandleFunc("GET /api/jobs/abc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc","status":"running","progress":40}`))
	})
	mux.HandleFunc("GET /api/jobs/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"not_found","error":"Job not found"}`))
	})
	c := newTestClient(t, mux)

	id, err := c.Generate(context.Background(), domain.GenerateRequest{Prompt: "a boat"})
	if err != nil || id != "abc" {
		t.Fatalf("Generate = %q, %v", id, err)
	}
	view, err := c.JobStatus(context.Background(), "abc")
	if err != nil {
		t.Fatalf("JobStatus: %v", err)
	}
	if view.Status != domain.JobStatusRunning || view.Progress == nil || *view.Progress != 40 {
		t.Fatalf("unexpected view %+v", view)
	}
	if _, err := c.JobStatus(context.Background(), "gone"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAPIErrorCarriesBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to merge audio","details":"processing failed (exit code 1)"}`))
	}))
	_, err := c.MergeAudio(context.Background(), domain.MergeRequest{VideoURL: "https://cdn/v.mp4"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 500 || apiErr.Message != "Failed to merge audio" || apiErr.Details != "processing failed (exit code 1)" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestWaitResolvesRelativeURL(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"status":"generating","progress":10}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"completed","url":"/Shrek_Dancing_Video_Generated.mp4"}`))
	}))

	got, err := c.Wait(context.Background(), "job", jobs.Policy{Interval: time.Millisecond, MaxAttempts: 10})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	want := c.BaseURL()[:len(c.BaseURL())-len("/api")] + "/Shrek_Dancing_Video_Generated.mp4"
	if got != want {
		t.Fatalf("Wait = %q, want %q", got, want)
	}
}

func TestWaitReportsJobError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":"GPU out of memory"}`))
	}))
	_, err := c.Wait(context.Background(), "job", jobs.Policy{Interval: time.Millisecond, MaxAttempts: 3})
	if err == nil || err.Error() != "GPU out of memory" {
		t.Fatalf("Wait error = %v", err)
	}
}

func TestTrendingSoundsQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trending-sounds" || r.URL.Query().Get("provider") != "deezer" || r.URL.Query().Get("region") != "FR" {
			http.Error(w, `{"error":"unexpected"}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"sounds":[{"id":"dz-1","title":"Song","artist":"A","durationSec":30,"audioUrl":"https://p/1.mp3","source":"deezer"}]}`))
	}))
	got, err := c.TrendingSounds(context.Background(), "deezer", "FR")
	if err != nil {
		t.Fatalf("TrendingSounds: %v", err)
	}
	if len(got) != 1 || got[0].ID != "dz-1" || got[0].DurationSec != 30 {
		t.Fatalf("unexpected sounds %+v", got)
	}
}
