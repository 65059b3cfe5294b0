package repo

import (
	"context"
	"errors"
	"fmt"

	"veogallery/internal/domain"
	"veogallery/internal/infra"
	"veogallery/internal/sqlinline"
)

const pgUpdateAttempts = 3

// errVersionConflict signals that another writer updated the row first.
var errVersionConflict = errors.New("job version conflict")

// JobRepositoryPG implements domain.JobStore on top of PostgreSQL.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// EnsureSchema creates the jobs table when it does not exist yet.
func (r *JobRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureJobsTable); err != nil {
		return fmt.Errorf("ensure jobs table: %w", err)
	}
	return nil
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.Mode,
		string(job.Status),
		job.Progress,
		job.Prompt,
		job.ResultURL,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// Get fetches a job by its identifier.
func (r *JobRepositoryPG) Get(ctx context.Context, id string) (*domain.Job, error) {
	job, _, err := r.load(ctx, id)
	return job, err
}

// Update applies fn with optimistic locking on the row version.
func (r *JobRepositoryPG) Update(ctx context.Context, id string, fn func(*domain.Job) error) (*domain.Job, error) {
	for attempt := 0; attempt < pgUpdateAttempts; attempt++ {
		job, version, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(job); err != nil {
			return nil, err
		}
		tag, err := r.sql.Exec(ctx, sqlinline.QUpdateJob,
			id,
			version,
			string(job.Status),
			job.Progress,
			job.ResultURL,
			job.ErrorMessage,
			job.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 1 {
			return job, nil
		}
	}
	return nil, fmt.Errorf("update job %s: %w", id, errVersionConflict)
}

// Sweep deletes terminal jobs created before c.Terminal and unfinished jobs
// last updated before c.Stale.
func (r *JobRepositoryPG) Sweep(ctx context.Context, c domain.SweepCutoffs) (int, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QSweepJobs, c.Terminal, c.Stale)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *JobRepositoryPG) load(ctx context.Context, id string) (*domain.Job, int64, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJob, id)
	var (
		job     domain.Job
		status  string
		version int64
	)
	if err := row.Scan(
		&job.ID,
		&job.Mode,
		&status,
		&job.Progress,
		&job.Prompt,
		&job.ResultURL,
		&job.ErrorMessage,
		&version,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, err
	}
	job.Status = domain.JobStatus(status)
	return &job, version, nil
}

var _ domain.JobStore = (*JobRepositoryPG)(nil)
