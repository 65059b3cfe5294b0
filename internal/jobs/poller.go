package jobs

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
)

// DefaultPollInterval matches the cadence the gallery UI has always used.
const DefaultPollInterval = 3 * time.Second

// StatusSource is anything that can report the current view of a job.
type StatusSource interface {
	JobStatus(ctx context.Context, id string) (domain.JobView, error)
}

// StatusSourceFunc adapts a function to StatusSource.
type StatusSourceFunc func(ctx context.Context, id string) (domain.JobView, error)

func (f StatusSourceFunc) JobStatus(ctx context.Context, id string) (domain.JobView, error) {
	return f(ctx, id)
}

// Policy bounds a polling loop. Zero MaxAttempts and zero Deadline mean unbounded.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
	Deadline    time.Duration
	// Jitter spreads each wait by up to ±Jitter of Interval, in [0, 1].
	Jitter float64
}

// DefaultPolicy polls every three seconds with no upper bound.
func DefaultPolicy() Policy {
	return Policy{Interval: DefaultPollInterval}
}

// ErrPollExhausted is returned when the policy runs out of attempts or time.
var ErrPollExhausted = errors.New("poll budget exhausted")

// Poller waits for jobs to reach a terminal state.
type Poller struct {
	source  StatusSource
	policy  Policy
	baseURL string
	logger  zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

type PollerOption func(*Poller)

// WithLogger attaches a logger for per-attempt debug output.
func WithLogger(l zerolog.Logger) PollerOption {
	return func(p *Poller) { p.logger = l.With().Str("component", "poller").Logger() }
}

// WithSleep replaces the wait between attempts, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) PollerOption {
	return func(p *Poller) { p.sleep = fn }
}

// NewPoller builds a poller. baseURL is used to absolutize relative result URLs.
func NewPoller(source StatusSource, policy Policy, baseURL string, opts ...PollerOption) *Poller {
	if policy.Interval <= 0 {
		policy.Interval = DefaultPollInterval
	}
	if policy.Jitter < 0 {
		policy.Jitter = 0
	}
	if policy.Jitter > 1 {
		policy.Jitter = 1
	}
	p := &Poller{
		source:  source,
		policy:  policy,
		baseURL: baseURL,
		logger:  zerolog.Nop(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait polls until the job succeeds or fails. On success it returns an absolute
// URL; on failure the error text is exactly the upstream message when one was
// given. Unknown IDs are treated as not yet visible and retried until the
// policy budget runs out, at which point domain.ErrNotFound is returned.
func (p *Poller) Wait(ctx context.Context, id string) (string, error) {
	if p.policy.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.policy.Deadline)
		defer cancel()
	}

	sawJob := false
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", p.stopped(err, sawJob)
		}

		view, err := p.source.JobStatus(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			p.logger.Debug().Str("job_id", id).Int("attempt", attempt).Msg("job not visible yet")
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", p.stopped(ctxErr, sawJob)
			}
			return "", err
		default:
			sawJob = true
			if view.Status.IsSuccess() {
				return ResolveURL(p.baseURL, view.URL)
			}
			if view.Status == domain.JobStatusError {
				msg := view.Error
				if msg == "" {
					msg = "Job failed"
				}
				return "", errors.New(msg)
			}
			p.logger.Debug().Str("job_id", id).Str("status", string(view.Status)).Int("attempt", attempt).Msg("job pending")
		}

		if p.policy.MaxAttempts > 0 && attempt >= p.policy.MaxAttempts {
			if !sawJob {
				return "", fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
			}
			return "", fmt.Errorf("job %s after %d attempts: %w", id, attempt, ErrPollExhausted)
		}

		if err := p.sleep(ctx, p.nextInterval()); err != nil {
			return "", p.stopped(err, sawJob)
		}
	}
}

// stopped maps a context error onto the poller's error vocabulary.
func (p *Poller) stopped(err error, sawJob bool) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if !sawJob {
			return domain.ErrNotFound
		}
		return ErrPollExhausted
	}
	return domain.ErrCancelled
}

func (p *Poller) nextInterval() time.Duration {
	d := p.policy.Interval
	if p.policy.Jitter == 0 {
		return d
	}
	spread := (rand.Float64()*2 - 1) * p.policy.Jitter
	return time.Duration(float64(d) * (1 + spread))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
