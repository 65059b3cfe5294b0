package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
	"veogallery/internal/infra/metrics"
	"veogallery/internal/jobs"
	"veogallery/internal/middleware"
)

const (
	remoteDefaultTimeout = 30 * time.Second
	remoteServiceName    = "generation backend"
)

type RemoteOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      domain.JobStore
	Logger     zerolog.Logger
	Now        func() time.Time
}

// RemoteGenerator forwards jobs to an HTTP generation backend and mirrors the
// backend's view of each job into the local store on every status query.
type RemoteGenerator struct {
	baseURL string
	client  *http.Client
	store   domain.JobStore
	logger  zerolog.Logger
	now     func() time.Time
}

type remoteStartResponse struct {
	JobID string `json:"job_id"`
}

type remoteJobResponse struct {
	Status   string   `json:"status"`
	URL      string   `json:"url"`
	Error    string   `json:"error"`
	Progress *float64 `json:"progress"`
}

func NewRemoteGenerator(opts RemoteOptions) (*RemoteGenerator, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("remote generator: base url: %w", domain.ErrNotConfigured)
	}
	if opts.Store == nil {
		return nil, errors.New("remote generator: store is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: remoteDefaultTimeout}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &RemoteGenerator{
		baseURL: base,
		client:  client,
		store:   opts.Store,
		logger:  opts.Logger.With().Str("component", "remote_generator").Logger(),
		now:     now,
	}, nil
}

func (g *RemoteGenerator) Mode() string { return domain.ModeRemote }

// BaseURL is the backend root that relative result URLs resolve against.
func (g *RemoteGenerator) BaseURL() string { return g.baseURL }

func (g *RemoteGenerator) Start(ctx context.Context, req domain.SanitizedRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate", &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if rid := middleware.RequestIDFromContext(ctx); rid != "" {
		httpReq.Header.Set(middleware.RequestIDHeader, rid)
	}
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: generate: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &domain.UpstreamError{
			Service:    remoteServiceName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("startJob failed: %d", resp.StatusCode),
		}
	}
	var out remoteStartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode generate response: %v", domain.ErrProviderFailure, err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("%w: No job_id in response", domain.ErrProviderFailure)
	}

	job := domain.NewJob(out.JobID, domain.ModeRemote, req.Prompt, g.now())
	if err := g.store.Create(ctx, job); err != nil {
		g.logger.Warn().Err(err).Str("job_id", out.JobID).Msg("record remote job")
	}
	metrics.IncJobSubmitted(domain.ModeRemote)
	g.logger.Info().Str("job_id", out.JobID).Int("frames", req.Frames).Str("aspect", req.Aspect).Msg("remote job submitted")
	return out.JobID, nil
}

// Status asks the backend for the job and folds the answer into the store.
// A job the store already holds as terminal is served without a backend call.
func (g *RemoteGenerator) Status(ctx context.Context, jobID string) (*domain.Job, error) {
	if cached, err := g.store.Get(ctx, jobID); err == nil && cached.IsTerminal() {
		return cached, nil
	}

	remote, err := g.fetch(ctx, jobID)
	if err != nil {
		return nil, err
	}

	apply := func(j *domain.Job) error { return g.apply(j, remote) }
	job, err := g.store.Update(ctx, jobID, apply)
	if errors.Is(err, domain.ErrNotFound) {
		// submitted through another replica or already swept locally
		fresh := domain.NewJob(jobID, domain.ModeRemote, "", g.now())
		if err := apply(fresh); err != nil {
			return nil, err
		}
		if err := g.store.Create(ctx, fresh); err != nil {
			g.logger.Warn().Err(err).Str("job_id", jobID).Msg("record remote job")
		}
		return fresh, nil
	}
	if errors.Is(err, domain.ErrTerminal) {
		return g.store.Get(ctx, jobID)
	}
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		metrics.IncJobFinished(domain.ModeRemote, string(job.Status))
	}
	return job, nil
}

func (g *RemoteGenerator) fetch(ctx context.Context, jobID string) (*remoteJobResponse, error) {
	endpoint := g.baseURL + "/jobs/" + url.PathEscape(jobID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Cache-Control", "no-store")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: job status: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.UpstreamError{
			Service:    remoteServiceName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("RunPod API error: %d", resp.StatusCode),
		}
	}
	var out remoteJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode job status: %v", domain.ErrProviderFailure, err)
	}
	return &out, nil
}

func (g *RemoteGenerator) apply(j *domain.Job, remote *remoteJobResponse) error {
	now := g.now()
	status := domain.JobStatus(strings.ToLower(strings.TrimSpace(remote.Status)))
	switch status {
	case domain.JobStatusDone, domain.JobStatusCompleted:
		resolved, err := jobs.ResolveURL(g.baseURL, remote.URL)
		if err != nil {
			return j.Fail(fmt.Sprintf("invalid result url: %v", err), now)
		}
		return j.Complete(domain.JobStatusDone, resolved, now)
	case domain.JobStatusError:
		return j.Fail(remote.Error, now)
	case domain.JobStatusQueued, domain.JobStatusRunning, domain.JobStatusGenerating, domain.JobStatusProcessing:
		progress := j.Progress
		if remote.Progress != nil {
			progress = int(*remote.Progress)
		}
		return j.Advance(status, progress, now)
	default:
		g.logger.Warn().Str("job_id", j.ID).Str("status", remote.Status).Msg("unknown backend status")
		return j.Advance(domain.JobStatusRunning, j.Progress, now)
	}
}

var _ Generator = (*RemoteGenerator)(nil)
