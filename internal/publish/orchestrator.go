package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
	"veogallery/internal/infra/metrics"
	"veogallery/internal/media"
	"veogallery/internal/storage"
)

// Orchestrator makes sure the publisher always receives a fetchable URL:
// inline data URLs are first uploaded to object storage.
type Orchestrator struct {
	publisher Publisher
	store     storage.ObjectStore
	logger    zerolog.Logger
}

// NewOrchestrator wires a publisher with an optional object store. Without a
// store only http(s) video URLs can be published.
func NewOrchestrator(publisher Publisher, store storage.ObjectStore, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		publisher: publisher,
		store:     store,
		logger:    logger.With().Str("component", "publish").Logger(),
	}
}

func (o *Orchestrator) Mode() string { return o.publisher.Mode() }

func (o *Orchestrator) Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	if !isHTTPURL(req.VideoURL) {
		url, err := o.stage(ctx, req.VideoURL)
		if err != nil {
			return nil, err
		}
		req.VideoURL = url
	}

	res, err := o.publisher.Publish(ctx, req)
	metrics.ObservePublish(o.publisher.Mode(), err)
	if err != nil {
		o.logger.Error().Err(err).Str("mode", o.publisher.Mode()).Msg("publish failed")
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) stage(ctx context.Context, raw string) (string, error) {
	if !strings.HasPrefix(raw, "data:") {
		return "", domain.Invalid("videoUrl must be an http(s) or data URL")
	}
	if o.store == nil {
		return "", fmt.Errorf("object storage for inline videos: %w", domain.ErrNotConfigured)
	}
	contentType, data, err := media.DecodeDataURL(raw)
	if err != nil {
		return "", domain.Invalid("invalid data URL: %v", err)
	}
	obj, err := o.store.Put(ctx, storage.Object{
		Key:         storage.NewObjectKey("video.mp4"),
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}
	o.logger.Info().Str("key", obj.Key).Int64("size", obj.Size).Msg("staged inline video")
	return obj.URL, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
