package video

import (
	"context"

	"veogallery/internal/domain"
)

// Generator starts generation jobs and reports their state. Start returns as
// soon as the job is registered and never waits for the video itself.
type Generator interface {
	Start(ctx context.Context, req domain.SanitizedRequest) (string, error)
	Status(ctx context.Context, jobID string) (*domain.Job, error)
	Mode() string
}
