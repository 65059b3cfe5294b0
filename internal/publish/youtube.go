package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"veogallery/internal/domain"
)

const (
	youtubeCategoryPeopleBlogs = "22"
	youtubePrivacy             = "unlisted"
	liveMessage                = "🎬 Video successfully published to YouTube!"
)

// videoInserter performs videos.insert with a media body.
type videoInserter interface {
	Insert(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error)
}

type serviceInserter struct {
	svc *youtube.Service
}

func (s serviceInserter) Insert(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error) {
	return s.svc.Videos.Insert([]string{"snippet", "status"}, video).Media(media).Context(ctx).Do()
}

// YouTubeOptions configures the live publisher.
type YouTubeOptions struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	// HTTPClient downloads the source video. Defaults to a 5 minute timeout client.
	HTTPClient     *http.Client
	ServiceOptions []option.ClientOption
	Logger         zerolog.Logger
	Now            func() time.Time
}

// YouTubePublisher uploads through the YouTube Data API v3 using a stored
// OAuth refresh token.
type YouTubePublisher struct {
	inserter videoInserter
	http     *http.Client
	logger   zerolog.Logger
	now      func() time.Time
}

func NewYouTubePublisher(ctx context.Context, opts YouTubeOptions) (*YouTubePublisher, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" || opts.RefreshToken == "" {
		return nil, fmt.Errorf("youtube credentials: %w", domain.ErrNotConfigured)
	}
	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	token := &oauth2.Token{AccessToken: opts.AccessToken, RefreshToken: opts.RefreshToken}
	if opts.AccessToken == "" {
		// force a refresh on first use
		token.Expiry = time.Now().Add(-time.Hour)
	}
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	svcOpts := append([]option.ClientOption{option.WithHTTPClient(client)}, opts.ServiceOptions...)
	svc, err := youtube.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return newYouTubePublisher(serviceInserter{svc: svc}, opts), nil
}

func newYouTubePublisher(inserter videoInserter, opts YouTubeOptions) *YouTubePublisher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &YouTubePublisher{
		inserter: inserter,
		http:     httpClient,
		logger:   opts.Logger.With().Str("component", "youtube_publisher").Logger(),
		now:      now,
	}
}

func (p *YouTubePublisher) Mode() string { return ModeLive }

func (p *YouTubePublisher) Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.VideoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	resp, err := p.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Failed to download video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Service:    "video download",
			StatusCode: resp.StatusCode,
			Message:    "Failed to download video: " + http.StatusText(resp.StatusCode),
		}
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  youtubeCategoryPeopleBlogs,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           youtubePrivacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	p.logger.Info().Str("title", req.Title).Msg("uploading to youtube")
	uploaded, err := p.inserter.Insert(ctx, video, resp.Body)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &domain.UpstreamError{
				Service:    "youtube",
				StatusCode: gerr.Code,
				Message:    "youtube upload: " + gerr.Message,
			}
		}
		return nil, fmt.Errorf("youtube upload: %w", err)
	}
	if uploaded == nil || uploaded.Id == "" {
		return nil, errors.New("youtube upload: response has no video id")
	}

	res := &domain.PublishResult{
		VideoID:     uploaded.Id,
		URL:         watchURL(uploaded.Id),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Privacy:     youtubePrivacy,
		UploadedAt:  p.now().UTC(),
		Message:     liveMessage,
	}
	if s := uploaded.Snippet; s != nil {
		res.ChannelID = s.ChannelId
		if s.Title != "" {
			res.Title = s.Title
		}
		if s.Description != "" {
			res.Description = s.Description
		}
	}
	if uploaded.Status != nil && uploaded.Status.PrivacyStatus != "" {
		res.Privacy = uploaded.Status.PrivacyStatus
	}
	p.logger.Info().Str("video_id", res.VideoID).Str("channel_id", res.ChannelID).Msg("youtube upload complete")
	return res, nil
}
