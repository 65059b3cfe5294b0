package domain

import "strings"

// AudioChoice selects a generated audio bed when no audio URL is supplied.
type AudioChoice string

const (
	AudioTone    AudioChoice = "tone"
	AudioSilence AudioChoice = "silence"

	MaxVolume = 5.0
)

// MergeRequest asks for an audio track to be muxed into a video.
type MergeRequest struct {
	VideoURL    string      `json:"videoUrl"`
	AudioURL    string      `json:"audioUrl,omitempty"`
	AudioChoice AudioChoice `json:"audioChoice,omitempty"`
	Volume      *float64    `json:"volume,omitempty"`
}

// Normalize validates the request, maps "beep" onto tone and clamps volume to [0, MaxVolume].
func (r *MergeRequest) Normalize() error {
	r.VideoURL = strings.TrimSpace(r.VideoURL)
	r.AudioURL = strings.TrimSpace(r.AudioURL)
	if r.VideoURL == "" {
		return Invalid("videoUrl is required")
	}
	switch AudioChoice(strings.ToLower(strings.TrimSpace(string(r.AudioChoice)))) {
	case "", AudioTone, "beep":
		r.AudioChoice = AudioTone
	case AudioSilence:
		r.AudioChoice = AudioSilence
	default:
		return Invalid("audioChoice must be tone or silence")
	}
	if r.Volume != nil {
		v := *r.Volume
		if v < 0 {
			v = 0
		}
		if v > MaxVolume {
			v = MaxVolume
		}
		r.Volume = &v
	}
	return nil
}

// AudioSource names where the merged audio comes from, for logs and metrics.
func (r *MergeRequest) AudioSource() string {
	if r.AudioURL != "" {
		return "url"
	}
	return string(r.AudioChoice)
}
