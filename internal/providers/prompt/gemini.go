package prompt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"veogallery/internal/domain"
)

// Fallback reasons passed to OnFallback.
const (
	FallbackNoClient      = "no_client"
	FallbackRequestFailed = "request_failed"
	FallbackEmptyResponse = "empty_response"
)

const geminiDefaultTimeout = 20 * time.Second

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Enhancer
	OnFallback func(reason string, err error)
}

// textGenerator is the single model call the enhancer needs.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.7)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GeminiEnhancer asks a Gemini model to rewrite prompts and degrades to the
// fallback enhancer whenever the model is unavailable.
type GeminiEnhancer struct {
	gen        textGenerator
	fallback   Enhancer
	onFallback func(reason string, err error)
}

// NewGeminiEnhancer builds the enhancer. An empty API key is not an error: the
// enhancer then always answers from the fallback.
func NewGeminiEnhancer(ctx context.Context, opts GeminiOptions) (*GeminiEnhancer, error) {
	g := &GeminiEnhancer{fallback: opts.Fallback, onFallback: opts.OnFallback}
	if g.fallback == nil {
		g.fallback = NewStaticEnhancer()
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return g, nil
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: geminiDefaultTimeout}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimSpace(opts.BaseURL),
		},
	})
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	g.gen = &genaiGenerator{client: client, model: model}
	return g, nil
}

func (g *GeminiEnhancer) Enhance(ctx context.Context, prompt string) (*Enhancement, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.Invalid("Prompt is required")
	}
	if g.gen == nil {
		return g.useFallback(ctx, prompt, FallbackNoClient, errors.New("gemini api key not configured"))
	}
	text, err := g.gen.GenerateText(ctx, buildEnhancePrompt(prompt))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return g.useFallback(ctx, prompt, FallbackRequestFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return g.useFallback(ctx, prompt, FallbackEmptyResponse, errors.New("empty model response"))
	}
	res := parseEnhancement(text)
	res.Provider = geminiProviderName
	return res, nil
}

func (g *GeminiEnhancer) useFallback(ctx context.Context, prompt, reason string, cause error) (*Enhancement, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	res, err := g.fallback.Enhance(ctx, prompt)
	if res != nil {
		res.Provider = staticProviderName
	}
	return res, err
}

var _ Enhancer = (*GeminiEnhancer)(nil)
