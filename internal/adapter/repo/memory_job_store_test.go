package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"veogallery/internal/domain"
)

func TestMemoryJobStoreReturnsCopies(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()
	now := time.Now()
	job := domain.NewJob("j1", domain.ModeSimulated, "p", now)
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	job.Prompt = "mutated"

	got, err := store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Prompt != "p" {
		t.Fatalf("Prompt = %q, store kept caller's pointer", got.Prompt)
	}
	got.Status = domain.JobStatusError
	again, _ := store.Get(ctx, "j1")
	if again.Status != domain.JobStatusQueued {
		t.Fatalf("Status = %q, store returned shared pointer", again.Status)
	}
}

func TestMemoryJobStoreUnknownID(t *testing.T) {
	store := NewMemoryJobStore()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
	_, err := store.Update(context.Background(), "missing", func(*domain.Job) error { return nil })
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update err = %v, want ErrNotFound", err)
	}
}

func TestMemoryJobStoreUpdateAbortsOnError(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()
	now := time.Now()
	_ = store.Create(ctx, domain.NewJob("j1", domain.ModeRemote, "p", now))
	if _, err := store.Update(ctx, "j1", func(j *domain.Job) error { return j.Complete(domain.JobStatusDone, "u", now) }); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	_, err := store.Update(ctx, "j1", func(j *domain.Job) error { return j.Fail("late", now) })
	if !errors.Is(err, domain.ErrTerminal) {
		t.Fatalf("Update err = %v, want ErrTerminal", err)
	}
	got, _ := store.Get(ctx, "j1")
	if got.Status != domain.JobStatusDone || got.ErrorMessage != "" {
		t.Fatalf("terminal job mutated: %+v", got)
	}
}

func TestMemoryJobStoreSweep(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()
	old := time.Now().Add(-20 * time.Minute)
	fresh := time.Now()

	oldDone := domain.NewJob("old-done", domain.ModeSimulated, "p", old)
	_ = oldDone.Complete(domain.JobStatusCompleted, "/v.mp4", old)
	oldPending := domain.NewJob("old-pending", domain.ModeSimulated, "p", old)
	freshDone := domain.NewJob("fresh-done", domain.ModeSimulated, "p", fresh)
	_ = freshDone.Complete(domain.JobStatusCompleted, "/v.mp4", fresh)
	for _, j := range []*domain.Job{oldDone, oldPending, freshDone} {
		if err := store.Create(ctx, j); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	removed, err := store.Sweep(ctx, domain.SweepCutoffs{
		Terminal: time.Now().Add(-10 * time.Minute),
		Stale:    time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, "old-done"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("old-done still present")
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
}

func TestMemoryJobStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()
	now := time.Now()
	_ = store.Create(ctx, domain.NewJob("j1", domain.ModeSimulated, "p", now))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(p int) {
			defer wg.Done()
			_, _ = store.Update(ctx, "j1", func(j *domain.Job) error {
				return j.Advance(domain.JobStatusGenerating, p, time.Now())
			})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, "j1")
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "j1")
	if got.Progress != 49 {
		t.Fatalf("Progress = %d, want 49 (max of all updates)", got.Progress)
	}
}

func TestMemoryJobStoreSweepsStaleUnfinishedJobs(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()
	now := time.Now()

	abandoned := domain.NewJob("abandoned", domain.ModeRemote, "p", now.Add(-24*time.Hour))
	revived := domain.NewJob("revived", domain.ModeRemote, "p", now.Add(-24*time.Hour))
	_ = revived.Advance(domain.JobStatusGenerating, 50, now.Add(-time.Minute))
	for _, j := range []*domain.Job{abandoned, revived} {
		if err := store.Create(ctx, j); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	removed, err := store.Sweep(ctx, domain.SweepCutoffs{
		Terminal: now.Add(-10 * time.Minute),
		Stale:    now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, "abandoned"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("abandoned job still present")
	}
	if _, err := store.Get(ctx, "revived"); err != nil {
		t.Fatalf("recently updated job removed: %v", err)
	}
}
