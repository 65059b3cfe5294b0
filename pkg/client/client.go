// Package client talks to the gallery HTTP API.
package client

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
	"veogallery/internal/jobs"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", msg, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
}

type Option func(*Client)

// WithHTTPClient replaces the default 2 minute timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger enables debug logging of poll attempts.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// New builds a client for the API rooted at baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL is the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type generateResponse struct {
	JobID string `json:"job_id"`
}

// Generate submits a generation request and returns the job id.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	var out generateResponse
	if err := c.do(ctx, http.MethodPost, "/generate", req, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", errors.New("client: no job_id in response")
	}
	return out.JobID, nil
}

// JobStatus fetches the current view of a job. Unknown jobs yield domain.ErrNotFound.
func (c *Client) JobStatus(ctx context.Context, id string) (domain.JobView, error) {
	var out domain.JobView
	err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return domain.JobView{}, domain.ErrNotFound
	}
	return out, err
}

// Wait polls the job under policy and returns its absolute video URL.
func (c *Client) Wait(ctx context.Context, id string, policy jobs.Policy) (string, error) {
	root := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil {
		root = u.Scheme + "://" + u.Host + "/"
	}
	return jobs.NewPoller(c, policy, root, jobs.WithLogger(c.logger)).Wait(ctx, id)
}

type mergeResponse struct {
	DataURL string `json:"dataUrl"`
}

// MergeAudio returns the merged video as a data URL.
func (c *Client) MergeAudio(ctx context.Context, req domain.MergeRequest) (string, error) {
	var out mergeResponse
	if err := c.do(ctx, http.MethodPost, "/merge-audio", req, &out); err != nil {
		return "", err
	}
	return out.DataURL, nil
}

// PublishResponse mirrors the publish endpoint's answer.
type PublishResponse struct {
	Success     bool     `json:"success"`
	VideoID     string   `json:"videoId"`
	YouTubeURL  string   `json:"youtubeUrl"`
	ChannelID   string   `json:"channelId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Privacy     string   `json:"privacy"`
	UploadTime  string   `json:"uploadTime"`
	Message     string   `json:"message"`
	DemoMode    bool     `json:"demoMode"`
	Note        string   `json:"note,omitempty"`
}

func (c *Client) Publish(ctx context.Context, req domain.PublishRequest) (*PublishResponse, error) {
	var out PublishResponse
	if err := c.do(ctx, http.MethodPost, "/publish-to-youtube", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type soundsResponse struct {
	Sounds []domain.Sound `json:"sounds"`
}

// TrendingSounds lists sounds from provider; empty provider and region use the server defaults.
func (c *Client) TrendingSounds(ctx context.Context, provider, region string) ([]domain.Sound, error) {
	q := url.Values{}
	if provider != "" {
		q.Set("provider", provider)
	}
	if region != "" {
		q.Set("region", region)
	}
	path := "/trending-sounds"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out soundsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Sounds, nil
}

// Enhancement is the prompt rewrite returned by the API.
type Enhancement struct {
	EnhancedPrompt string   `json:"enhancedPrompt"`
	Reasoning      string   `json:"reasoning"`
	Improvements   []string `json:"improvements"`
}

func (c *Client) EnhancePrompt(ctx context.Context, prompt string) (*Enhancement, error) {
	var out Enhancement
	if err := c.do(ctx, http.MethodPost, "/enhance-prompt", map[string]string{"prompt": prompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error, Details: eb.Details}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s response: %w", path, err)
	}
	return nil
}
