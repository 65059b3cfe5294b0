package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultVideoTitle       = "AI Generated Video"
	DefaultVideoDescription = "Created with Veo-3 AI"
	MaxTitleRunes           = 100
)

// DefaultVideoTags returns a fresh copy of the default tag list.
func DefaultVideoTags() []string {
	return []string{"AI", "video", "generated"}
}

// PublishRequest asks for a video to be published to the video platform.
type PublishRequest struct {
	VideoURL    string   `json:"videoUrl"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Normalize applies defaults and truncates the title to the platform limit.
func (r *PublishRequest) Normalize() error {
	r.VideoURL = strings.TrimSpace(r.VideoURL)
	if r.VideoURL == "" {
		return Invalid("Video URL is required")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = DefaultVideoTitle
	}
	if utf8.RuneCountInString(r.Title) > MaxTitleRunes {
		r.Title = string([]rune(r.Title)[:MaxTitleRunes])
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = DefaultVideoDescription
	}
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = DefaultVideoTags()
	}
	r.Tags = tags
	return nil
}

// PublishResult describes a published (or simulated) video.
type PublishResult struct {
	VideoID     string
	URL         string
	ChannelID   string
	Title       string
	Description string
	Tags        []string
	Privacy     string
	UploadedAt  time.Time
	DemoMode    bool
	Message     string
}
