package domain

// Sound is a short audio clip offered as a soundtrack.
type Sound struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Artist      string `json:"artist" yaml:"artist"`
	DurationSec int    `json:"durationSec" yaml:"durationSec"`
	AudioURL    string `json:"audioUrl" yaml:"audioUrl"`
	Source      string `json:"source" yaml:"source"`
	Cover       string `json:"cover,omitempty" yaml:"cover,omitempty"`
}
