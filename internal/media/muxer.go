package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"veogallery/internal/domain"
)

const (
	silenceSource = "anullsrc=channel_layout=stereo:sample_rate=44100"
	toneSource    = "sine=frequency=440:sample_rate=44100"
	// generated audio only needs to outlast the clip, -shortest trims it
	generatedSeconds = "600"
	stderrTail       = 2048
)

// MuxJob describes one mux: a video file plus either an audio file or a
// generated audio source.
type MuxJob struct {
	VideoPath  string
	AudioPath  string
	Generated  domain.AudioChoice
	Volume     *float64
	OutputPath string
}

// Muxer combines a video stream with an audio stream into OutputPath.
type Muxer interface {
	Mux(ctx context.Context, job MuxJob) error
}

// ProcessError reports a media subprocess that exited unsuccessfully.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("processing failed (exit code %d)", e.ExitCode)
}

// FFmpegMuxer runs the ffmpeg binary. The video stream is copied as is and
// audio is re-encoded to AAC.
type FFmpegMuxer struct {
	binary string
	logger zerolog.Logger
}

func NewFFmpegMuxer(binary string, logger zerolog.Logger) *FFmpegMuxer {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpegMuxer{binary: binary, logger: logger.With().Str("component", "ffmpeg").Logger()}
}

// Args builds the ffmpeg command line for job, without the binary name.
func (m *FFmpegMuxer) Args(job MuxJob) []string {
	video := ffmpeg.Input(job.VideoPath)

	var audio *ffmpeg.Stream
	if job.AudioPath != "" {
		audio = ffmpeg.Input(job.AudioPath)
	} else {
		source := toneSource
		if job.Generated == domain.AudioSilence {
			source = silenceSource
		}
		audio = ffmpeg.Input(source, ffmpeg.KwArgs{"f": "lavfi", "t": generatedSeconds})
	}

	out := ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      "aac",
		"shortest": "",
	}
	if job.Volume != nil {
		out["filter:a"] = "volume=" + strconv.FormatFloat(*job.Volume, 'f', -1, 64)
	}

	return ffmpeg.Output(
		[]*ffmpeg.Stream{video.Get("v:0"), audio.Get("a:0")},
		job.OutputPath,
		out,
	).OverWriteOutput().GetArgs()
}

func (m *FFmpegMuxer) Mux(ctx context.Context, job MuxJob) error {
	args := m.Args(job)
	m.logger.Debug().Strs("args", args).Msg("running ffmpeg")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.binary, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: ffmpeg binary %q: %v", domain.ErrNotConfigured, m.binary, err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		tail := stderr.String()
		if len(tail) > stderrTail {
			tail = tail[len(tail)-stderrTail:]
		}
		m.logger.Error().Int("exit_code", exitErr.ExitCode()).Str("stderr", tail).Msg("ffmpeg failed")
		return &ProcessError{ExitCode: exitErr.ExitCode(), Stderr: tail}
	}
	return fmt.Errorf("run ffmpeg: %w", err)
}

var _ Muxer = (*FFmpegMuxer)(nil)
