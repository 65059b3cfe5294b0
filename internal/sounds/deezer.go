package sounds

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"

	"veogallery/internal/domain"
)

const (
	deezerLimit     = 25
	previewSeconds  = 30
	deezerSourceTag = "deezer-chart"
)

type deezerTrack struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Duration *float64    `json:"duration"`
	Preview  string      `json:"preview"`
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Cover      string `json:"cover"`
		CoverSmall string `json:"cover_small"`
	} `json:"album"`
}

// deezerChart lists chart tracks that have a preview clip. Upstream failures
// degrade to an empty list.
func (c *Catalog) deezerChart(ctx context.Context, region string) ([]domain.Sound, error) {
	endpoint := c.deezer + "/chart"
	if region != "" {
		endpoint += "/" + url.PathEscape(region)
	}
	endpoint += "/tracks"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().Err(err).Msg("deezer chart unreachable")
		return []domain.Sound{}, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("deezer chart returned non-2xx")
		return []domain.Sound{}, nil
	}

	var payload struct {
		Data []deezerTrack `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn().Err(err).Msg("deezer chart payload invalid")
		return []domain.Sound{}, nil
	}

	out := make([]domain.Sound, 0, deezerLimit)
	for _, t := range payload.Data {
		if t.Preview == "" {
			continue
		}
		if len(out) == deezerLimit {
			break
		}
		artist := t.Artist.Name
		if artist == "" {
			artist = "Unknown"
		}
		cover := t.Album.CoverSmall
		if cover == "" {
			cover = t.Album.Cover
		}
		out = append(out, domain.Sound{
			ID:          t.ID.String(),
			Title:       t.Title,
			Artist:      artist,
			DurationSec: clipSeconds(t.Duration),
			AudioURL:    t.Preview,
			Source:      deezerSourceTag,
			Cover:       cover,
		})
	}
	return out, nil
}

func clipSeconds(d *float64) int {
	if d == nil || math.IsNaN(*d) || math.IsInf(*d, 0) {
		return previewSeconds
	}
	return int(math.Min(previewSeconds, *d))
}
