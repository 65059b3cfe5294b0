package video

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"veogallery/internal/adapter/repo"
	"veogallery/internal/domain"
)

// recordingStore remembers every state a job passes through.
type recordingStore struct {
	*repo.MemoryJobStore
	mu      sync.Mutex
	history []domain.Job
}

func (s *recordingStore) Update(ctx context.Context, id string, fn func(*domain.Job) error) (*domain.Job, error) {
	job, err := s.MemoryJobStore.Update(ctx, id, fn)
	if err == nil {
		s.mu.Lock()
		s.history = append(s.history, *job)
		s.mu.Unlock()
	}
	return job, err
}

func TestSimulatedGeneratorWalksPhases(t *testing.T) {
	store := &recordingStore{MemoryJobStore: repo.NewMemoryJobStore()}
	gen, err := NewSimulatedGenerator(SimulatedOptions{
		Store: store,
		Phases: []Phase{
			{Status: domain.JobStatusQueued, Duration: time.Millisecond},
			{Status: domain.JobStatusGenerating, Duration: 2 * time.Millisecond},
			{Status: domain.JobStatusProcessing, Duration: time.Millisecond},
			{Status: domain.JobStatusCompleted},
		},
		ResultURL: "/Shrek_Dancing_Video_Generated.mp4",
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewSimulatedGenerator returned error: %v", err)
	}
	defer gen.Close()

	id, err := gen.Start(context.Background(), domain.SanitizedRequest{Prompt: "dancing ogre"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if id == "" {
		t.Fatal("Start returned empty id")
	}
	gen.Wait()

	job, err := gen.Status(context.Background(), id)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if job.Status != domain.JobStatusCompleted || job.Progress != 100 || job.ResultURL != "/Shrek_Dancing_Video_Generated.mp4" {
		t.Fatalf("unexpected final job: %+v", job)
	}
	if job.Prompt != "dancing ogre" {
		t.Fatalf("Prompt = %q", job.Prompt)
	}

	wantStatus := []domain.JobStatus{domain.JobStatusQueued, domain.JobStatusGenerating, domain.JobStatusProcessing, domain.JobStatusCompleted}
	wantProgress := []int{0, 33, 67, 100}
	if len(store.history) != len(wantStatus) {
		t.Fatalf("history length = %d, want %d", len(store.history), len(wantStatus))
	}
	for i, h := range store.history {
		if h.Status != wantStatus[i] || h.Progress != wantProgress[i] {
			t.Fatalf("step %d = %s/%d, want %s/%d", i, h.Status, h.Progress, wantStatus[i], wantProgress[i])
		}
	}
}

func TestSimulatedGeneratorStartDoesNotBlock(t *testing.T) {
	store := repo.NewMemoryJobStore()
	gen, err := NewSimulatedGenerator(SimulatedOptions{
		Store:     store,
		ResultURL: "/v.mp4",
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewSimulatedGenerator returned error: %v", err)
	}

	start := time.Now()
	id, err := gen.Start(context.Background(), domain.SanitizedRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Start blocked for %s", elapsed)
	}
	job, err := gen.Status(context.Background(), id)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if job.IsTerminal() {
		t.Fatalf("job finished immediately: %+v", job)
	}
	gen.Close()
}

func TestSimulatedGeneratorRejectsBadOptions(t *testing.T) {
	if _, err := NewSimulatedGenerator(SimulatedOptions{ResultURL: "/v.mp4"}); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := NewSimulatedGenerator(SimulatedOptions{Store: repo.NewMemoryJobStore()}); err == nil {
		t.Fatal("expected error without result url")
	}
	_, err := NewSimulatedGenerator(SimulatedOptions{
		Store:     repo.NewMemoryJobStore(),
		ResultURL: "/v.mp4",
		Phases:    []Phase{{Status: domain.JobStatusProcessing}},
	})
	if err == nil {
		t.Fatal("expected error when last phase is not a success status")
	}
}
