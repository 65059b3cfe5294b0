package domain

import (
	"math"
	"strings"
)

const (
	// GenerationFPS is the frame rate the backend renders at.
	GenerationFPS = 12
	// MaxFrames caps clip length regardless of requested seconds.
	MaxFrames      = 48
	DefaultSeconds = 6.0
	DefaultSteps   = 14
	DefaultAspect  = "16:9"

	dimensionStep = 64
)

type dimensions struct {
	Width  int
	Height int
}

var aspectPresets = map[string]dimensions{
	"16:9": {Width: 576, Height: 320},
	"1:1":  {Width: 512, Height: 512},
	"9:16": {Width: 320, Height: 576},
}

// GenerateRequest is the client payload for starting a generation job.
type GenerateRequest struct {
	Prompt  string   `json:"prompt"`
	Seconds *float64 `json:"seconds,omitempty"`
	Steps   *int     `json:"steps,omitempty"`
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
	Aspect  string   `json:"aspect,omitempty"`
}

// SanitizedRequest is what gets forwarded to a generator. Width and Height are
// positive multiples of 64 and Frames lies in [1, MaxFrames].
type SanitizedRequest struct {
	Prompt  string  `json:"prompt"`
	Seconds float64 `json:"seconds"`
	Aspect  string  `json:"aspect"`
	Steps   int     `json:"steps"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Frames  int     `json:"frames"`
}

// Sanitize clamps a generation request to sizes the backend can render.
func Sanitize(req GenerateRequest) (SanitizedRequest, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return SanitizedRequest{}, Invalid("prompt is required")
	}

	aspect := strings.TrimSpace(req.Aspect)
	preset, ok := aspectPresets[aspect]
	if !ok {
		aspect = DefaultAspect
		preset = aspectPresets[DefaultAspect]
	}

	width, height := preset.Width, preset.Height
	if req.Width != nil && req.Height != nil && *req.Width != 0 && *req.Height != 0 {
		width = snapDimension(*req.Width)
		height = snapDimension(*req.Height)
	}

	seconds := DefaultSeconds
	if req.Seconds != nil && !math.IsNaN(*req.Seconds) && !math.IsInf(*req.Seconds, 0) && *req.Seconds > 0 {
		seconds = *req.Seconds
	}
	frames := int(math.Round(seconds * GenerationFPS))
	if frames > MaxFrames {
		frames = MaxFrames
	}
	if frames < 1 {
		frames = 1
	}

	steps := DefaultSteps
	if req.Steps != nil && *req.Steps > 0 {
		steps = *req.Steps
	}

	return SanitizedRequest{
		Prompt:  prompt,
		Seconds: seconds,
		Aspect:  aspect,
		Steps:   steps,
		Width:   width,
		Height:  height,
		Frames:  frames,
	}, nil
}

func snapDimension(v int) int {
	snapped := int(math.Round(float64(v)/dimensionStep)) * dimensionStep
	if snapped < dimensionStep {
		return dimensionStep
	}
	return snapped
}
