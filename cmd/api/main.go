package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"veogallery/internal/adapter/repo"
	"veogallery/internal/domain"
	"veogallery/internal/http/handlers"
	"veogallery/internal/http/httpapi"
	"veogallery/internal/infra"
	"veogallery/internal/infra/geoip"
	"veogallery/internal/infra/metrics"
	"veogallery/internal/jobs"
	"veogallery/internal/media"
	"veogallery/internal/middleware"
	"veogallery/internal/providers/prompt"
	"veogallery/internal/providers/video"
	"veogallery/internal/publish"
	"veogallery/internal/sounds"
	"veogallery/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newJobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("job_store", cfg.JobStore).Msg("failed to open job store")
	}
	defer closeStore()

	generator, closeGenerator, err := newGenerator(cfg, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generator")
	}
	defer closeGenerator()

	objects, staticDir, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.StorageProvider).Msg("failed to configure object storage")
	}

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure publisher")
	}

	catalog, err := sounds.NewCatalog(sounds.Options{Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load sound catalog")
	}

	enhancer, err := prompt.NewGeminiEnhancer(ctx, prompt.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("prompt enhancer using fallback")
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure prompt enhancer")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
		defer resolver.Close()
	}

	app := &handlers.App{
		Config:    cfg,
		Logger:    logger,
		Generator: generator,
		Merger:    media.NewPipeline(media.NewFetcher(nil, 0), media.NewFFmpegMuxer(cfg.FFmpegPath, logger), cfg.MergeWorkDir, logger),
		Publisher: publish.NewOrchestrator(publisher, objects, logger),
		Storage:   objects,
		Sounds:    catalog,
		Prompts:   enhancer,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitPerMin:   cfg.RateLimitPerMin,
		CountryLookup:     lookup,
		StaticDir:         staticDir,
		TrustProxyHeaders: cfg.TrustProxy,
	})

	if cfg.SweepInProcess {
		sweeper := jobs.NewSweeper(store, cfg.JobRetention, logger)
		if err := sweeper.Start(ctx, cfg.JobSweepSchedule); err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule job sweeper")
		}
		defer sweeper.Stop()
	}

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().
			Str("generation_mode", generator.Mode()).
			Str("publish_mode", publisher.Mode()).
			Str("job_store", cfg.JobStore).
			Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newJobStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (domain.JobStore, func(), error) {
	switch cfg.JobStore {
	case infra.JobStoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewRedisJobStore(client, cfg.JobRetention), func() { _ = client.Close() }, nil
	case infra.JobStorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		runner := infra.NewSQLRunner(pool, logger)
		pg := repo.NewJobRepository(runner)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		go runner.WatchPoolStats(ctx, 30*time.Second)
		return pg, pool.Close, nil
	default:
		return repo.NewMemoryJobStore(), func() {}, nil
	}
}

func newGenerator(cfg *infra.Config, store domain.JobStore, logger infra.Logger) (video.Generator, func(), error) {
	if cfg.UseRealGeneration {
		g, err := video.NewRemoteGenerator(video.RemoteOptions{
			BaseURL: cfg.GenerationBackendURL,
			Store:   store,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, func() {}, nil
	}
	g, err := video.NewSimulatedGenerator(video.SimulatedOptions{
		Store:     store,
		Scale:     cfg.SimulatedPhaseScale,
		ResultURL: cfg.SimulatedVideoURL,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return g, g.Close, nil
}

// newObjectStore returns a nil store when the selected provider has no bucket
// configured; uploads then answer with a configuration error.
func newObjectStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (storage.ObjectStore, string, error) {
	if !cfg.HasStorageConfig() {
		logger.Warn().Str("provider", cfg.StorageProvider).Msg("object storage not configured, uploads disabled")
		return nil, "", nil
	}
	switch cfg.StorageProvider {
	case infra.StorageS3:
		s, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.S3PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return storage.Instrument(s), "", nil
	case infra.StorageLocal:
		dir := cfg.StoragePath
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		s, err := storage.NewFileStore(dir, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return storage.Instrument(s), dir, nil
	default:
		s, err := storage.NewGCSStore(ctx, cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSKeyFile)
		if err != nil {
			return nil, "", err
		}
		return storage.Instrument(s), "", nil
	}
}

func newPublisher(ctx context.Context, cfg *infra.Config, logger infra.Logger) (publish.Publisher, error) {
	if cfg.PublishMode == infra.PublishLive {
		yt, err := publish.NewYouTubePublisher(ctx, publish.YouTubeOptions{
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			AccessToken:  cfg.YouTubeAccessToken,
			RefreshToken: cfg.YouTubeRefreshToken,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return yt, nil
	}
	logger.Info().Msg("youtube credentials not configured, publishing in demo mode")
	return publish.NewDemoPublisher(cfg.PublishDemoDelay, logger), nil
}
