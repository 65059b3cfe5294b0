package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"veogallery/internal/adapter/repo"
	"veogallery/internal/domain"
	"veogallery/internal/infra"
	"veogallery/internal/infra/metrics"
	"veogallery/internal/jobs"
)

// The worker runs the retention sweep for job stores shared between API
// replicas. Run the API with JOB_SWEEP_IN_PROCESS=false when using it.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store domain.JobStore
	switch cfg.JobStore {
	case infra.JobStoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: redis connection failed")
		}
		defer client.Close()
		store = repo.NewRedisJobStore(client, cfg.JobRetention)
	case infra.JobStorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: db connection failed")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		pg := repo.NewJobRepository(runner)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("worker: ensure schema failed")
		}
		if !*once {
			go runner.WatchPoolStats(ctx, 30*time.Second)
		}
		store = pg
	default:
		logger.Fatal().Str("job_store", cfg.JobStore).Msg("worker: JOB_STORE must be redis or postgres; the memory store is swept by the API process")
	}

	sweeper := jobs.NewSweeper(store, cfg.JobRetention, logger)

	if *once {
		n, err := sweeper.SweepOnce(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: sweep failed")
		}
		logger.Info().Int("removed", n).Msg("worker: sweep complete")
		return
	}

	if err := sweeper.Start(ctx, cfg.JobSweepSchedule); err != nil {
		logger.Fatal().Err(err).Msg("worker: schedule failed")
	}
	logger.Info().Str("job_store", cfg.JobStore).Msg("worker: started")

	<-ctx.Done()
	sweeper.Stop()
	logger.Info().Msg("worker: stopped")
}
