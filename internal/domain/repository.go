package domain

import (
	"context"
	"time"
)

// JobStore persists generation jobs. Implementations must return ErrNotFound
// for unknown IDs and apply Update atomically with respect to other writers.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	// Update loads the job, applies fn and stores the result. An error from fn
	// aborts the write and is returned unchanged.
	Update(ctx context.Context, id string, fn func(*Job) error) (*Job, error)
	// Sweep removes every job c marks as expired and reports how many went.
	Sweep(ctx context.Context, c SweepCutoffs) (int, error)
}

// SweepCutoffs bounds one retention pass. Terminal jobs created before
// Terminal are removed, and so are unfinished jobs nobody has updated since
// Stale (abandoned remote jobs never reach a terminal state on their own).
type SweepCutoffs struct {
	Terminal time.Time
	Stale    time.Time
}

// Expired reports whether j falls outside the retention window.
func (c SweepCutoffs) Expired(j *Job) bool {
	if j.IsTerminal() {
		return j.CreatedAt.Before(c.Terminal)
	}
	return j.UpdatedAt.Before(c.Stale)
}

// Oldest is the later of both cutoffs. No job created after it can expire.
func (c SweepCutoffs) Oldest() time.Time {
	if c.Stale.After(c.Terminal) {
		return c.Stale
	}
	return c.Terminal
}
