package publish

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"veogallery/internal/domain"
	"veogallery/internal/storage"
)

type fakeInserter struct {
	video *youtube.Video
	body  string
	resp  *youtube.Video
	err   error
}

func (f *fakeInserter) Insert(_ context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error) {
	f.video = video
	b, _ := io.ReadAll(media)
	f.body = string(b)
	return f.resp, f.err
}

func videoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clip.mp4" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("video-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYouTubePublisherUploadsWithPlatformDefaults(t *testing.T) {
	srv := videoServer(t)
	ins := &fakeInserter{resp: &youtube.Video{
		Id:      "abcdefghijk",
		Snippet: &youtube.VideoSnippet{ChannelId: "UC123", Title: "My clip"},
		Status:  &youtube.VideoStatus{PrivacyStatus: "unlisted"},
	}}
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p := newYouTubePublisher(ins, YouTubeOptions{HTTPClient: srv.Client(), Logger: zerolog.Nop(), Now: func() time.Time { return fixed }})

	res, err := p.Publish(context.Background(), domain.PublishRequest{VideoURL: srv.URL + "/clip.mp4", Title: "My clip"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ins.body != "video-bytes" {
		t.Fatalf("uploaded body = %q", ins.body)
	}
	if ins.video.Snippet.CategoryId != "22" || ins.video.Status.PrivacyStatus != "unlisted" || ins.video.Status.SelfDeclaredMadeForKids {
		t.Fatalf("unexpected upload metadata %+v %+v", ins.video.Snippet, ins.video.Status)
	}
	if ins.video.Snippet.Description != domain.DefaultVideoDescription {
		t.Fatalf("description default not applied: %q", ins.video.Snippet.Description)
	}
	if res.URL != "https://www.youtube.com/watch?v=abcdefghijk" || res.ChannelID != "UC123" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.DemoMode || !res.UploadedAt.Equal(fixed) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestYouTubePublisherDownloadFailure(t *testing.T) {
	srv := videoServer(t)
	ins := &fakeInserter{}
	p := newYouTubePublisher(ins, YouTubeOptions{HTTPClient: srv.Client(), Logger: zerolog.Nop()})

	_, err := p.Publish(context.Background(), domain.PublishRequest{VideoURL: srv.URL + "/gone.mp4"})
	var up *domain.UpstreamError
	if !errors.As(err, &up) || up.StatusCode != http.StatusNotFound {
		t.Fatalf("expected upstream 404, got %v", err)
	}
	if ins.video != nil {
		t.Fatal("insert must not be called")
	}
}

func TestYouTubePublisherPlatformErrorKeepsStatus(t *testing.T) {
	srv := videoServer(t)
	ins := &fakeInserter{err: &googleapi.Error{Code: http.StatusForbidden, Message: "quotaExceeded"}}
	p := newYouTubePublisher(ins, YouTubeOptions{HTTPClient: srv.Client(), Logger: zerolog.Nop()})

	_, err := p.Publish(context.Background(), domain.PublishRequest{VideoURL: srv.URL + "/clip.mp4"})
	var up *domain.UpstreamError
	if !errors.As(err, &up) || up.StatusCode != http.StatusForbidden {
		t.Fatalf("expected upstream 403, got %v", err)
	}
	if up.Message != "youtube upload: quotaExceeded" {
		t.Fatalf("message = %q", up.Message)
	}
}

func TestNewYouTubePublisherRequiresCredentials(t *testing.T) {
	_, err := NewYouTubePublisher(context.Background(), YouTubeOptions{ClientID: "id"})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDemoPublisher(t *testing.T) {
	p := NewDemoPublisher(0, zerolog.Nop())
	res, err := p.Publish(context.Background(), domain.PublishRequest{VideoURL: "https://cdn.example.com/a.mp4", Title: strings.Repeat("é", 150)})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`).MatchString(res.VideoID) {
		t.Fatalf("video id %q has wrong shape", res.VideoID)
	}
	if !res.DemoMode || res.Privacy != "private" {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := len([]rune(res.Title)); got != domain.MaxTitleRunes {
		t.Fatalf("title runes = %d", got)
	}
	if len(res.Tags) != 3 {
		t.Fatalf("default tags not applied: %v", res.Tags)
	}
}

func TestDemoPublisherHonoursCancellation(t *testing.T) {
	p := NewDemoPublisher(time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Publish(ctx, domain.PublishRequest{VideoURL: "https://x/a.mp4"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDemoPublisherRequiresVideoURL(t *testing.T) {
	p := NewDemoPublisher(0, zerolog.Nop())
	if _, err := p.Publish(context.Background(), domain.PublishRequest{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

type recordingPublisher struct {
	got domain.PublishRequest
}

func (r *recordingPublisher) Mode() string { return ModeDemo }
func (r *recordingPublisher) Publish(_ context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	r.got = req
	return &domain.PublishResult{VideoID: "x"}, nil
}

type memStore struct {
	objects map[string]string
}

func (m *memStore) Provider() string { return "mem" }
func (m *memStore) Put(_ context.Context, obj storage.Object) (*storage.StoredObject, error) {
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[obj.Key] = string(b)
	return &storage.StoredObject{Key: obj.Key, URL: "https://bucket.example.com/" + obj.Key, Size: int64(len(b))}, nil
}

func TestOrchestratorStagesDataURL(t *testing.T) {
	pub := &recordingPublisher{}
	store := &memStore{}
	o := NewOrchestrator(pub, store, zerolog.Nop())

	dataURL := "data:video/mp4;base64," + base64.StdEncoding.EncodeToString([]byte("inline"))
	if _, err := o.Publish(context.Background(), domain.PublishRequest{VideoURL: dataURL}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.HasPrefix(pub.got.VideoURL, "https://bucket.example.com/videos/") {
		t.Fatalf("publisher got %q", pub.got.VideoURL)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected one staged object, got %d", len(store.objects))
	}
	for _, v := range store.objects {
		if v != "inline" {
			t.Fatalf("staged payload %q", v)
		}
	}
}

func TestOrchestratorPassesHTTPURLThrough(t *testing.T) {
	pub := &recordingPublisher{}
	store := &memStore{}
	o := NewOrchestrator(pub, store, zerolog.Nop())

	if _, err := o.Publish(context.Background(), domain.PublishRequest{VideoURL: "https://cdn.example.com/a.mp4"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.got.VideoURL != "https://cdn.example.com/a.mp4" || len(store.objects) != 0 {
		t.Fatalf("http url should not be staged: %+v", pub.got)
	}
}

func TestOrchestratorDataURLWithoutStore(t *testing.T) {
	o := NewOrchestrator(&recordingPublisher{}, nil, zerolog.Nop())
	_, err := o.Publish(context.Background(), domain.PublishRequest{VideoURL: "data:video/mp4;base64,AAAA"})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOrchestratorRejectsOtherSchemes(t *testing.T) {
	o := NewOrchestrator(&recordingPublisher{}, &memStore{}, zerolog.Nop())
	_, err := o.Publish(context.Background(), domain.PublishRequest{VideoURL: "ftp://example.com/a.mp4"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
