package publish

import (
	"context"

	"veogallery/internal/domain"
)

// Publisher pushes a normalized request's video to the platform.
type Publisher interface {
	Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error)
	Mode() string
}

const (
	ModeLive = "live"
	ModeDemo = "demo"
)

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
