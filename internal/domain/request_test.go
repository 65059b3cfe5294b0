package domain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMergeRequestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		req        MergeRequest
		wantChoice AudioChoice
		wantVolume *float64
		wantErr    bool
	}{
		{name: "default tone", req: MergeRequest{VideoURL: "http://v"}, wantChoice: AudioTone},
		{name: "beep alias", req: MergeRequest{VideoURL: "http://v", AudioChoice: "beep"}, wantChoice: AudioTone},
		{name: "silence", req: MergeRequest{VideoURL: "http://v", AudioChoice: "Silence"}, wantChoice: AudioSilence},
		{name: "volume clamped high", req: MergeRequest{VideoURL: "http://v", Volume: ptrF(9)}, wantChoice: AudioTone, wantVolume: ptrF(5)},
		{name: "volume clamped low", req: MergeRequest{VideoURL: "http://v", Volume: ptrF(-1)}, wantChoice: AudioTone, wantVolume: ptrF(0)},
		{name: "missing video", req: MergeRequest{}, wantErr: true},
		{name: "unknown choice", req: MergeRequest{VideoURL: "http://v", AudioChoice: "drums"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			err := req.Normalize()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("err = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			if req.AudioChoice != tc.wantChoice {
				t.Fatalf("AudioChoice = %q, want %q", req.AudioChoice, tc.wantChoice)
			}
			if tc.wantVolume != nil && (req.Volume == nil || *req.Volume != *tc.wantVolume) {
				t.Fatalf("Volume = %v, want %v", req.Volume, *tc.wantVolume)
			}
		})
	}
}

func TestPublishRequestNormalize(t *testing.T) {
	req := PublishRequest{VideoURL: " https://x/v.mp4 ", Tags: []string{" ", ""}}
	if err := req.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if req.Title != DefaultVideoTitle || req.Description != DefaultVideoDescription {
		t.Fatalf("defaults not applied: %+v", req)
	}
	if strings.Join(req.Tags, ",") != "AI,video,generated" {
		t.Fatalf("Tags = %v", req.Tags)
	}

	long := PublishRequest{VideoURL: "x", Title: strings.Repeat("é", 150)}
	if err := long.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if n := utf8.RuneCountInString(long.Title); n != MaxTitleRunes {
		t.Fatalf("title runes = %d, want %d", n, MaxTitleRunes)
	}

	empty := PublishRequest{}
	if err := empty.Normalize(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
