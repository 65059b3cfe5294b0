package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
	"veogallery/internal/infra/metrics"
)

const workspacePrefix = "merge-audio-"

// Pipeline downloads the inputs of a merge request into a private workspace,
// muxes them and returns the result as a data URL. The workspace is removed on
// every exit path.
type Pipeline struct {
	fetcher  *Fetcher
	muxer    Muxer
	workRoot string
	logger   zerolog.Logger
}

// NewPipeline wires the merge pipeline. An empty workRoot uses os.TempDir.
func NewPipeline(fetcher *Fetcher, muxer Muxer, workRoot string, logger zerolog.Logger) *Pipeline {
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0)
	}
	return &Pipeline{
		fetcher:  fetcher,
		muxer:    muxer,
		workRoot: workRoot,
		logger:   logger.With().Str("component", "merge_pipeline").Logger(),
	}
}

func (p *Pipeline) Merge(ctx context.Context, req domain.MergeRequest) (string, error) {
	if err := req.Normalize(); err != nil {
		return "", err
	}
	if p.muxer == nil {
		return "", fmt.Errorf("muxer: %w", domain.ErrNotConfigured)
	}
	start := time.Now()
	dataURL, err := p.merge(ctx, req)
	metrics.ObserveMerge(req.AudioSource(), time.Since(start), err)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			p.logger.Error().Err(err).Str("audio", req.AudioSource()).Msg("merge failed")
		}
		return "", err
	}
	p.logger.Info().Str("audio", req.AudioSource()).Dur("elapsed", time.Since(start)).Msg("merge complete")
	return dataURL, nil
}

func (p *Pipeline) merge(ctx context.Context, req domain.MergeRequest) (string, error) {
	dir, err := os.MkdirTemp(p.workRoot, workspacePrefix)
	if err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	job := MuxJob{
		VideoPath:  filepath.Join(dir, "input-video.mp4"),
		Generated:  req.AudioChoice,
		Volume:     req.Volume,
		OutputPath: filepath.Join(dir, "output.mp4"),
	}
	if _, err := p.fetcher.Fetch(ctx, "video", req.VideoURL, job.VideoPath); err != nil {
		return "", err
	}

	if req.AudioURL != "" {
		staging := filepath.Join(dir, "input-audio")
		contentType, err := p.fetcher.Fetch(ctx, "audio", req.AudioURL, staging)
		if err != nil {
			return "", err
		}
		job.AudioPath = staging + AudioExtension(contentType)
		if err := os.Rename(staging, job.AudioPath); err != nil {
			return "", fmt.Errorf("stage audio: %w", err)
		}
	}

	if err := p.muxer.Mux(ctx, job); err != nil {
		return "", err
	}

	out, err := os.ReadFile(job.OutputPath)
	if err != nil {
		return "", fmt.Errorf("read merged output: %w", err)
	}
	return "data:video/mp4;base64," + base64.StdEncoding.EncodeToString(out), nil
}
