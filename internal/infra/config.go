package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Job store backends.
const (
	JobStoreMemory   = "memory"
	JobStoreRedis    = "redis"
	JobStorePostgres = "postgres"
)

// Object storage providers.
const (
	StorageGCS   = "gcs"
	StorageS3    = "s3"
	StorageLocal = "local"
)

// Publish modes.
const (
	PublishLive = "live"
	PublishDemo = "demo"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	LogLevel         string
	Port             string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
	TrustProxy       bool
	GeoIPDBPath      string

	GenerationBackendURL string
	UseRealGeneration    bool
	SimulatedVideoURL    string
	SimulatedPhaseScale  float64
	PollInterval         time.Duration

	JobStore         string
	RedisURL         string
	RedisPassword    string
	RedisDB          int
	DatabaseURL      string
	DBMaxConns       int
	JobRetention     time.Duration
	JobSweepSchedule string
	SweepInProcess   bool

	StorageProvider string
	GCSProjectID    string
	GCSBucketName   string
	GCSKeyFile      string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string
	StoragePath     string
	StorageBaseURL  string

	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeAccessToken  string
	YouTubeRefreshToken string
	PublishMode         string
	PublishDemoDelay    time.Duration

	FFmpegPath   string
	MergeWorkDir string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Port:             port,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 120)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TrustProxy:       getEnvBool("TRUST_PROXY_HEADERS", true),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),

		GenerationBackendURL: strings.TrimRight(strings.TrimSpace(getEnv("GENERATION_BACKEND_URL", os.Getenv("VITE_RUNPOD_BASE"))), "/"),
		UseRealGeneration:    getEnvBool("USE_REAL_GENERATION", false),
		SimulatedVideoURL:    getEnv("SIMULATED_VIDEO_URL", "/Shrek_Dancing_Video_Generated.mp4"),
		SimulatedPhaseScale:  getEnvFloat("SIMULATED_PHASE_SCALE", 1),
		PollInterval:         time.Millisecond * time.Duration(getEnvInt("POLL_INTERVAL_MS", 3000)),

		JobStore:         strings.ToLower(getEnv("JOB_STORE", JobStoreMemory)),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		JobRetention:     time.Minute * time.Duration(getEnvInt("JOB_RETENTION_MINUTES", 10)),
		JobSweepSchedule: getEnv("JOB_SWEEP_SCHEDULE", "@every 5m"),
		SweepInProcess:   getEnvBool("JOB_SWEEP_IN_PROCESS", true),

		StorageProvider: strings.ToLower(getEnv("STORAGE_PROVIDER", StorageGCS)),
		GCSProjectID:    os.Getenv("GCS_PROJECT_ID"),
		GCSBucketName:   os.Getenv("GCS_BUCKET_NAME"),
		GCSKeyFile:      os.Getenv("GCS_KEY_FILE"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		StoragePath:     getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:  getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),

		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeAccessToken:  os.Getenv("YOUTUBE_ACCESS_TOKEN"),
		YouTubeRefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
		PublishMode:         strings.ToLower(os.Getenv("PUBLISH_MODE")),
		PublishDemoDelay:    time.Millisecond * time.Duration(getEnvInt("PUBLISH_DEMO_DELAY_MS", 3000)),

		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
		MergeWorkDir: os.Getenv("MERGE_WORKDIR"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
	}

	if cfg.PublishMode == "" {
		cfg.PublishMode = PublishDemo
		if cfg.HasYouTubeCredentials() {
			cfg.PublishMode = PublishLive
		}
	}

	switch cfg.PublishMode {
	case PublishLive:
		if !cfg.HasYouTubeCredentials() {
			return nil, fmt.Errorf("PUBLISH_MODE=live requires YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and YOUTUBE_REFRESH_TOKEN")
		}
	case PublishDemo:
	default:
		return nil, fmt.Errorf("PUBLISH_MODE must be %q or %q, got %q", PublishLive, PublishDemo, cfg.PublishMode)
	}

	switch cfg.JobStore {
	case JobStoreMemory:
	case JobStoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when JOB_STORE=redis")
		}
	case JobStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when JOB_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported JOB_STORE %q", cfg.JobStore)
	}

	switch cfg.StorageProvider {
	case StorageGCS, StorageS3, StorageLocal:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_PROVIDER %q", cfg.StorageProvider)
	}

	if cfg.UseRealGeneration && cfg.GenerationBackendURL == "" {
		return nil, fmt.Errorf("GENERATION_BACKEND_URL is required when USE_REAL_GENERATION is enabled")
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.SimulatedPhaseScale <= 0 {
		cfg.SimulatedPhaseScale = 1
	}

	return cfg, nil
}

// HasYouTubeCredentials reports whether enough OAuth material is present to publish for real.
func (c *Config) HasYouTubeCredentials() bool {
	return c.YouTubeClientID != "" && c.YouTubeClientSecret != "" && c.YouTubeRefreshToken != ""
}

// HasStorageConfig reports whether the selected object storage provider has its bucket configured.
func (c *Config) HasStorageConfig() bool {
	switch c.StorageProvider {
	case StorageGCS:
		return c.GCSProjectID != "" && c.GCSBucketName != ""
	case StorageS3:
		return c.S3Bucket != ""
	case StorageLocal:
		return c.StoragePath != ""
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
