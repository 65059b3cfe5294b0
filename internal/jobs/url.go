package jobs

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL turns a result URL into an absolute one. Absolute http(s) URLs are
// returned unchanged; anything else is resolved against base.
func ResolveURL(base, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty result url")
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse result url: %w", err)
	}
	if ref.IsAbs() && (strings.EqualFold(ref.Scheme, "http") || strings.EqualFold(ref.Scheme, "https")) {
		return raw, nil
	}
	if base == "" {
		return "", fmt.Errorf("relative result url %q without a base url", raw)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
