package publish

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
)

const (
	videoIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	videoIDLength   = 11
	demoPrivacy     = "private"
	demoMessage     = `🎬 [DEMO MODE] Video successfully "published" to YouTube!`

	// DemoNote is attached to demo responses.
	DemoNote = "This is a simulation for demo purposes. To publish real videos, configure YouTube OAuth credentials."
)

// DemoPublisher fakes an upload: it waits for delay and returns a random but
// well-formed video ID.
type DemoPublisher struct {
	delay  time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewDemoPublisher(delay time.Duration, logger zerolog.Logger) *DemoPublisher {
	return &DemoPublisher{
		delay:  delay,
		logger: logger.With().Str("component", "demo_publisher").Logger(),
		now:    time.Now,
	}
}

func (p *DemoPublisher) Mode() string { return ModeDemo }

func (p *DemoPublisher) Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	p.logger.Info().Str("video_url", req.VideoURL).Msg("[DEMO MODE] simulating youtube upload")

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	id := NewVideoID()
	return &domain.PublishResult{
		VideoID:     id,
		URL:         watchURL(id),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Privacy:     demoPrivacy,
		UploadedAt:  p.now().UTC(),
		DemoMode:    true,
		Message:     demoMessage,
	}, nil
}

// NewVideoID returns an 11 character ID in the platform's alphabet.
func NewVideoID() string {
	b := make([]byte, videoIDLength)
	for i := range b {
		b[i] = videoIDAlphabet[rand.IntN(len(videoIDAlphabet))]
	}
	return string(b)
}
