package domain

import (
	"fmt"
	"time"
)

// JobStatus enumerates job lifecycle states across both generator paths.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusGenerating JobStatus = "generating"
	JobStatusRunning    JobStatus = "running"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// Generator modes recorded on each job.
const (
	ModeSimulated = "simulated"
	ModeRemote    = "remote"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusDone || s == JobStatusError
}

// IsSuccess reports whether s is one of the successful terminal states.
func (s JobStatus) IsSuccess() bool {
	return s == JobStatusCompleted || s == JobStatusDone
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusGenerating, JobStatusRunning, JobStatusProcessing,
		JobStatusCompleted, JobStatusDone, JobStatusError:
		return true
	}
	return false
}

// Job is a generation job record. Once Status is terminal the record is frozen;
// a successful job has ResultURL set and a failed one ErrorMessage.
type Job struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Status       JobStatus `json:"status"`
	Progress     int       `json:"progress"`
	Prompt       string    `json:"prompt"`
	ResultURL    string    `json:"resultUrl,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewJob returns a queued job with zero progress.
func NewJob(id, mode, prompt string, now time.Time) *Job {
	return &Job{
		ID:        id,
		Mode:      mode,
		Status:    JobStatusQueued,
		Prompt:    prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *Job) IsTerminal() bool { return j.Status.IsTerminal() }

// Advance moves a pending job to another pending status. Progress never goes
// backwards and stays below 100 until completion.
func (j *Job) Advance(status JobStatus, progress int, now time.Time) error {
	if j.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, j.ID, j.Status)
	}
	if !status.Valid() || status.IsTerminal() {
		return fmt.Errorf("advance to %q: %w", status, ErrInvalidRequest)
	}
	if progress > 99 {
		progress = 99
	}
	if progress < j.Progress {
		progress = j.Progress
	}
	j.Status = status
	j.Progress = progress
	j.UpdatedAt = now
	return nil
}

// Complete finishes the job successfully with the playable URL.
func (j *Job) Complete(status JobStatus, url string, now time.Time) error {
	if j.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, j.ID, j.Status)
	}
	if !status.IsSuccess() {
		return fmt.Errorf("complete with %q: %w", status, ErrInvalidRequest)
	}
	if url == "" {
		return fmt.Errorf("complete without url: %w", ErrInvalidRequest)
	}
	j.Status = status
	j.Progress = 100
	j.ResultURL = url
	j.ErrorMessage = ""
	j.UpdatedAt = now
	return nil
}

// Fail finishes the job with an error message.
func (j *Job) Fail(message string, now time.Time) error {
	if j.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, j.ID, j.Status)
	}
	if message == "" {
		message = "Job failed"
	}
	j.Status = JobStatusError
	j.ErrorMessage = message
	j.ResultURL = ""
	j.UpdatedAt = now
	return nil
}

// Clone returns a copy that shares no state with j.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	return &cp
}

// JobView is the wire shape returned by the status endpoint.
type JobView struct {
	ID       string    `json:"id,omitempty"`
	Status   JobStatus `json:"status"`
	Progress *int      `json:"progress,omitempty"`
	URL      string    `json:"url,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// View projects the job onto the status response.
func (j *Job) View() JobView {
	v := JobView{ID: j.ID, Status: j.Status}
	switch {
	case j.Status.IsSuccess():
		v.URL = j.ResultURL
	case j.Status == JobStatusError:
		v.Error = j.ErrorMessage
	default:
		p := j.Progress
		v.Progress = &p
	}
	return v
}
