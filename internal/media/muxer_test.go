package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"veogallery/internal/domain"
)

func containsSeq(args []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(args); i++ {
		match := true
		for j := range seq {
			if args[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func mapTargets(args []string) []string {
	var out []string
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-map" {
			out = append(out, args[i+1])
		}
	}
	return out
}

func TestFFmpegArgsGeneratedTone(t *testing.T) {
	m := NewFFmpegMuxer("", zerolog.Nop())
	args := m.Args(MuxJob{VideoPath: "in.mp4", Generated: domain.AudioTone, OutputPath: "out.mp4"})

	for _, seq := range [][]string{
		{"-i", "in.mp4"},
		{"-c:v", "copy"},
		{"-c:a", "aac"},
		{"-shortest"},
		{"-f", "lavfi"},
		{"-t", "600"},
		{"-i", toneSource},
	} {
		if !containsSeq(args, seq...) {
			t.Fatalf("args %v missing %v", args, seq)
		}
	}
	if args[len(args)-1] != "-y" && !containsSeq(args, "-y") {
		t.Fatalf("args %v missing overwrite flag", args)
	}
	if containsSeq(args, "-filter:a") {
		t.Fatalf("no volume requested but got filter: %v", args)
	}

	maps := mapTargets(args)
	if len(maps) != 2 {
		t.Fatalf("expected two stream maps, got %v", maps)
	}
	if !strings.HasSuffix(maps[0], ":v:0") || !strings.HasSuffix(maps[1], ":a:0") {
		t.Fatalf("unexpected stream maps %v", maps)
	}
}

func TestFFmpegArgsSilenceAndVolume(t *testing.T) {
	m := NewFFmpegMuxer("ffmpeg", zerolog.Nop())
	vol := 1.5
	args := m.Args(MuxJob{VideoPath: "in.mp4", Generated: domain.AudioSilence, Volume: &vol, OutputPath: "out.mp4"})

	if !containsSeq(args, "-i", silenceSource) {
		t.Fatalf("expected silence source in %v", args)
	}
	if !containsSeq(args, "-filter:a", "volume=1.5") {
		t.Fatalf("expected volume filter in %v", args)
	}
}

func TestFFmpegArgsAudioFileSkipsLavfi(t *testing.T) {
	m := NewFFmpegMuxer("ffmpeg", zerolog.Nop())
	args := m.Args(MuxJob{VideoPath: "in.mp4", AudioPath: "track.mp3", OutputPath: "out.mp4"})

	if !containsSeq(args, "-i", "track.mp3") {
		t.Fatalf("expected audio input in %v", args)
	}
	if containsSeq(args, "-f", "lavfi") {
		t.Fatalf("audio file input must not use lavfi: %v", args)
	}
}

func TestFFmpegMuxMissingBinary(t *testing.T) {
	m := NewFFmpegMuxer(filepath.Join(t.TempDir(), "no-such-ffmpeg"), zerolog.Nop())
	err := m.Mux(context.Background(), MuxJob{VideoPath: "in.mp4", OutputPath: "out.mp4"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestFFmpegMuxIntegration(t *testing.T) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	gen := exec.Command(bin, "-hide_banner", "-loglevel", "error", "-f", "lavfi", "-i", "testsrc=size=64x64:rate=12", "-t", "1", "-pix_fmt", "yuv420p", video)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot synthesize input clip: %v: %s", err, out)
	}

	out := filepath.Join(dir, "out.mp4")
	m := NewFFmpegMuxer(bin, zerolog.Nop())
	if err := m.Mux(context.Background(), MuxJob{VideoPath: video, Generated: domain.AudioTone, OutputPath: out}); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty output, err=%v", err)
	}
}
