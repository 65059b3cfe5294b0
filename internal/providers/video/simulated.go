package video

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veogallery/internal/domain"
	"veogallery/internal/infra/metrics"
)

// Phase is one step of the simulated pipeline.
type Phase struct {
	Status   domain.JobStatus
	Duration time.Duration
}

// DefaultPhases mirrors the timings of the real model closely enough for demos.
var DefaultPhases = []Phase{
	{Status: domain.JobStatusQueued, Duration: 1 * time.Second},
	{Status: domain.JobStatusGenerating, Duration: 8 * time.Second},
	{Status: domain.JobStatusProcessing, Duration: 4 * time.Second},
	{Status: domain.JobStatusCompleted},
}

type SimulatedOptions struct {
	Store     domain.JobStore
	Phases    []Phase
	Scale     float64
	ResultURL string
	Logger    zerolog.Logger
	Now       func() time.Time
}

// SimulatedGenerator walks each job through fixed phases on timers and then
// completes it with a canned video URL. It never talks to a backend.
type SimulatedGenerator struct {
	store     domain.JobStore
	phases    []Phase
	resultURL string
	logger    zerolog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSimulatedGenerator(opts SimulatedOptions) (*SimulatedGenerator, error) {
	if opts.Store == nil {
		return nil, errors.New("simulated generator: store is required")
	}
	if opts.ResultURL == "" {
		return nil, errors.New("simulated generator: result url is required")
	}
	phases := opts.Phases
	if len(phases) == 0 {
		phases = DefaultPhases
	}
	if last := phases[len(phases)-1]; !last.Status.IsSuccess() {
		return nil, errors.New("simulated generator: last phase must be a success status")
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	scaled := make([]Phase, len(phases))
	for i, p := range phases {
		scaled[i] = Phase{Status: p.Status, Duration: time.Duration(float64(p.Duration) * scale)}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SimulatedGenerator{
		store:     opts.Store,
		phases:    scaled,
		resultURL: opts.ResultURL,
		logger:    opts.Logger.With().Str("component", "simulated_generator").Logger(),
		now:       now,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (g *SimulatedGenerator) Mode() string { return domain.ModeSimulated }

func (g *SimulatedGenerator) Start(ctx context.Context, req domain.SanitizedRequest) (string, error) {
	id := uuid.NewString()
	job := domain.NewJob(id, domain.ModeSimulated, req.Prompt, g.now())
	if err := g.store.Create(ctx, job); err != nil {
		return "", err
	}
	metrics.IncJobSubmitted(domain.ModeSimulated)
	g.wg.Add(1)
	go g.run(id)
	return id, nil
}

func (g *SimulatedGenerator) Status(ctx context.Context, jobID string) (*domain.Job, error) {
	return g.store.Get(ctx, jobID)
}

// Close stops pending simulations and waits for them to exit.
func (g *SimulatedGenerator) Close() {
	g.cancel()
	g.wg.Wait()
}

// Wait blocks until every started simulation has finished.
func (g *SimulatedGenerator) Wait() {
	g.wg.Wait()
}

func (g *SimulatedGenerator) run(id string) {
	defer g.wg.Done()
	last := len(g.phases) - 1
	for i, phase := range g.phases {
		progress := 100
		if last > 0 {
			progress = int(math.Round(float64(i) / float64(last) * 100))
		}
		_, err := g.store.Update(g.ctx, id, func(j *domain.Job) error {
			if i == last {
				return j.Complete(phase.Status, g.resultURL, g.now())
			}
			return j.Advance(phase.Status, progress, g.now())
		})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				g.logger.Warn().Err(err).Str("job_id", id).Msg("simulation stopped")
			}
			return
		}
		if i == last {
			metrics.IncJobFinished(domain.ModeSimulated, string(phase.Status))
			g.logger.Debug().Str("job_id", id).Msg("simulated job completed")
			return
		}
		if phase.Duration <= 0 {
			continue
		}
		timer := time.NewTimer(phase.Duration)
		select {
		case <-timer.C:
		case <-g.ctx.Done():
			timer.Stop()
			return
		}
	}
}

var _ Generator = (*SimulatedGenerator)(nil)
