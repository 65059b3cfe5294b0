package infra

import (
	"testing"
	"time"
)

func clearPublishEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_REFRESH_TOKEN", "YOUTUBE_ACCESS_TOKEN", "PUBLISH_MODE", "JOB_STORE", "STORAGE_PROVIDER", "USE_REAL_GENERATION", "PORT", "STORAGE_BASE_URL", "TRUST_PROXY_HEADERS", "POLL_INTERVAL_MS"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearPublishEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JobStore != JobStoreMemory {
		t.Fatalf("JobStore = %q, want %q", cfg.JobStore, JobStoreMemory)
	}
	if cfg.PublishMode != PublishDemo {
		t.Fatalf("PublishMode = %q, want %q", cfg.PublishMode, PublishDemo)
	}
	if cfg.JobRetention != 10*time.Minute {
		t.Fatalf("JobRetention = %s, want 10m", cfg.JobRetention)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("PollInterval = %s, want 3s", cfg.PollInterval)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/static" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
	if !cfg.TrustProxy {
		t.Fatal("TrustProxy should default to true")
	}
}

func TestLoadConfigProxyTrustAndPollInterval(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv("TRUST_PROXY_HEADERS", "false")
	t.Setenv("POLL_INTERVAL_MS", "1500")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TrustProxy {
		t.Fatal("TrustProxy should follow TRUST_PROXY_HEADERS")
	}
	if cfg.PollInterval != 1500*time.Millisecond {
		t.Fatalf("PollInterval = %s, want 1.5s", cfg.PollInterval)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv("PORT", "1919")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:1919/static" {
		t.Fatalf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigPublishModeFollowsCredentials(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "refresh")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PublishMode != PublishLive {
		t.Fatalf("PublishMode = %q, want %q", cfg.PublishMode, PublishLive)
	}
}

func TestLoadConfigExplicitDemoWinsOverCredentials(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "refresh")
	t.Setenv("PUBLISH_MODE", "demo")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PublishMode != PublishDemo {
		t.Fatalf("PublishMode = %q, want %q", cfg.PublishMode, PublishDemo)
	}
}

func TestLoadConfigRejectsInvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "live without credentials", env: map[string]string{"PUBLISH_MODE": "live"}},
		{name: "unknown publish mode", env: map[string]string{"PUBLISH_MODE": "maybe"}},
		{name: "redis without url", env: map[string]string{"JOB_STORE": "redis", "REDIS_URL": ""}},
		{name: "postgres without dsn", env: map[string]string{"JOB_STORE": "postgres", "DATABASE_URL": ""}},
		{name: "unknown storage", env: map[string]string{"STORAGE_PROVIDER": "ftp"}},
		{name: "real generation without backend", env: map[string]string{"USE_REAL_GENERATION": "true", "GENERATION_BACKEND_URL": "", "VITE_RUNPOD_BASE": ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearPublishEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected LoadConfig to fail")
			}
		})
	}
}

func TestLoadConfigBackendAlias(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv("GENERATION_BACKEND_URL", "")
	t.Setenv("VITE_RUNPOD_BASE", "https://pod.example.com/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GenerationBackendURL != "https://pod.example.com" {
		t.Fatalf("GenerationBackendURL = %q", cfg.GenerationBackendURL)
	}
}
