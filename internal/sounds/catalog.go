package sounds

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"veogallery/internal/domain"
	"veogallery/internal/infra/metrics"
)

const (
	ProviderCurated = "curated"
	ProviderDeezer  = "deezer"
	ProviderITunes  = "itunes"

	CacheControlLive    = "public, max-age=120"
	CacheControlCurated = "public, max-age=600"

	DefaultRegion = "US"
)

//go:embed curated.yaml
var curatedYAML []byte

// Result is a provider response together with the cache policy it allows.
type Result struct {
	Sounds       []domain.Sound
	CacheControl string
}

// Options overrides upstream endpoints, mainly for tests.
type Options struct {
	HTTPClient      *http.Client
	DeezerBaseURL   string
	AppleRSSBaseURL string
	ITunesSearchURL string
	Logger          zerolog.Logger
}

// Catalog serves trending sound lists from the curated set or a live chart.
type Catalog struct {
	curated []domain.Sound
	http    *http.Client
	deezer  string
	rss     string
	search  string
	logger  zerolog.Logger
}

func NewCatalog(opts Options) (*Catalog, error) {
	var curated []domain.Sound
	if err := yaml.Unmarshal(curatedYAML, &curated); err != nil {
		return nil, fmt.Errorf("sounds: parse curated list: %w", err)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Catalog{
		curated: curated,
		http:    client,
		deezer:  strings.TrimRight(orDefault(opts.DeezerBaseURL, "https://api.deezer.com"), "/"),
		rss:     strings.TrimRight(orDefault(opts.AppleRSSBaseURL, "https://rss.applemarketingtools.com"), "/"),
		search:  orDefault(opts.ITunesSearchURL, "https://itunes.apple.com/search"),
		logger:  opts.Logger.With().Str("component", "sounds").Logger(),
	}, nil
}

// Curated returns a copy of the embedded list.
func (c *Catalog) Curated() []domain.Sound {
	out := make([]domain.Sound, len(c.curated))
	copy(out, c.curated)
	return out
}

// Trending resolves provider (unknown values fall back to curated). region is
// the caller's explicit choice and fallbackRegion is the geo-derived one.
func (c *Catalog) Trending(ctx context.Context, provider, region, fallbackRegion string) (Result, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	var (
		sounds []domain.Sound
		err    error
	)
	switch provider {
	case ProviderDeezer:
		sounds, err = c.deezerChart(ctx, pickRegion(region, fallbackRegion, ""))
	case ProviderITunes:
		sounds, err = c.itunesChart(ctx, pickRegion(region, fallbackRegion, DefaultRegion))
	default:
		provider = ProviderCurated
		metrics.ObserveSounds(provider, nil)
		return Result{Sounds: c.Curated(), CacheControl: CacheControlCurated}, nil
	}
	metrics.ObserveSounds(provider, err)
	if err != nil {
		c.logger.Error().Err(err).Str("provider", provider).Msg("trending sounds failed")
		return Result{}, err
	}
	if sounds == nil {
		sounds = []domain.Sound{}
	}
	return Result{Sounds: sounds, CacheControl: CacheControlLive}, nil
}

// NormalizeRegion canonicalizes a region code ("us", "USA", "419") or
// reports false when it is not a known region.
func NormalizeRegion(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	r, err := language.ParseRegion(raw)
	if err != nil {
		return "", false
	}
	return r.String(), true
}

func pickRegion(explicit, fallback, last string) string {
	if r, ok := NormalizeRegion(explicit); ok {
		return r
	}
	if r, ok := NormalizeRegion(fallback); ok {
		return r
	}
	return last
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
