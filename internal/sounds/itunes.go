package sounds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"veogallery/internal/domain"
)

const (
	itunesLimit       = 15
	itunesConcurrency = 4
	itunesSourceTag   = "itunes-preview"
)

type rssSong struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
}

type itunesMatch struct {
	TrackID       json.Number `json:"trackId"`
	TrackName     string      `json:"trackName"`
	ArtistName    string      `json:"artistName"`
	PreviewURL    string      `json:"previewUrl"`
	ArtworkURL100 string      `json:"artworkUrl100"`
}

// itunesChart reads Apple's most-played feed and resolves a preview clip for
// each of the top songs. A feed failure is an error; individual lookups that
// fail are skipped.
func (c *Catalog) itunesChart(ctx context.Context, region string) ([]domain.Sound, error) {
	feedURL := fmt.Sprintf("%s/api/v2/%s/music/most-played/50/songs.json", c.rss, url.PathEscape(region))

	var feed struct {
		Feed struct {
			Results []rssSong `json:"results"`
		} `json:"feed"`
	}
	status, err := c.getJSON(ctx, feedURL, &feed)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "apple rss", StatusCode: status, Message: "Failed to load trending sounds"}
	}

	items := feed.Feed.Results
	if len(items) > itunesLimit {
		items = items[:itunesLimit]
	}

	found := make([]*domain.Sound, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(itunesConcurrency)
	for i, item := range items {
		g.Go(func() error {
			found[i] = c.lookupPreview(gctx, item, region)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Sound, 0, len(items))
	for _, s := range found {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (c *Catalog) lookupPreview(ctx context.Context, item rssSong, region string) *domain.Sound {
	query := item.Name + " " + item.ArtistName
	q := url.Values{}
	q.Set("term", query)
	q.Set("country", region)
	q.Set("entity", "song")
	q.Set("limit", "1")

	var result struct {
		Results []itunesMatch `json:"results"`
	}
	if _, err := c.getJSON(ctx, c.search+"?"+q.Encode(), &result); err != nil {
		c.logger.Debug().Err(err).Str("query", query).Msg("itunes lookup failed")
		return nil
	}
	if len(result.Results) == 0 || result.Results[0].PreviewURL == "" {
		return nil
	}
	m := result.Results[0]

	id := m.TrackID.String()
	if id == "" {
		id = item.ID
	}
	if id == "" {
		id = query
	}
	title := firstNonEmpty(item.Name, m.TrackName)
	artist := firstNonEmpty(item.ArtistName, m.ArtistName, "Unknown")
	return &domain.Sound{
		ID:          id,
		Title:       title,
		Artist:      artist,
		DurationSec: previewSeconds,
		AudioURL:    m.PreviewURL,
		Source:      itunesSourceTag,
		Cover:       firstNonEmpty(item.ArtworkURL100, m.ArtworkURL100),
	}
}

func (c *Catalog) getJSON(ctx context.Context, endpoint string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("GET %s: status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return resp.StatusCode, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
