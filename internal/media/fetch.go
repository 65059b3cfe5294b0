package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultMaxAssetBytes bounds each downloaded input.
const DefaultMaxAssetBytes = 512 << 20

// FetchError reports an input asset that could not be downloaded.
type FetchError struct {
	Asset      string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to download %s: %d %s", e.Asset, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("Failed to download %s: %v", e.Asset, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var errAssetTooLarge = errors.New("asset exceeds size limit")

// Fetcher downloads http(s) and data: URLs to local files.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAssetBytes
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch writes the asset at rawURL to path and returns its content type.
func (f *Fetcher) Fetch(ctx context.Context, asset, rawURL, path string) (string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return f.fetchDataURL(asset, rawURL, path)
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &FetchError{Asset: asset, Err: fmt.Errorf("unsupported url %q", rawURL)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{Asset: asset, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Asset: asset, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{Asset: asset, StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	if err := f.writeLimited(path, resp.Body); err != nil {
		return "", &FetchError{Asset: asset, Err: err}
	}
	return resp.Header.Get("Content-Type"), nil
}

func (f *Fetcher) fetchDataURL(asset, raw, path string) (string, error) {
	contentType, data, err := DecodeDataURL(raw)
	if err != nil {
		return "", &FetchError{Asset: asset, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return "", &FetchError{Asset: asset, Err: errAssetTooLarge}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", asset, err)
	}
	return contentType, nil
}

func (f *Fetcher) writeLimited(path string, body io.Reader) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	n, copyErr := io.Copy(file, io.LimitReader(body, f.maxBytes+1))
	closeErr := file.Close()
	if copyErr != nil {
		return copyErr
	}
	if n > f.maxBytes {
		return errAssetTooLarge
	}
	return closeErr
}

// DecodeDataURL splits a base64 or percent-encoded data URL into its media
// type and payload.
func DecodeDataURL(raw string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "", nil, errors.New("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data url")
	}
	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta = m
		isBase64 = true
	}
	contentType := meta
	if contentType == "" {
		contentType = "text/plain;charset=US-ASCII"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data url: %w", err)
		}
		return contentType, data, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return contentType, []byte(decoded), nil
}

// AudioExtension picks a file extension ffmpeg can probe from a Content-Type.
func AudioExtension(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "wav"):
		return ".wav"
	}
	return ".mp3"
}
