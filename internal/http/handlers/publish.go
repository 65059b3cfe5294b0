package handlers

import (
	"errors"
	"net/http"
	"time"

	"veogallery/internal/domain"
	"veogallery/internal/publish"
)

type publishResponse struct {
	Success     bool     `json:"success"`
	VideoID     string   `json:"videoId"`
	YouTubeURL  string   `json:"youtubeUrl"`
	ChannelID   string   `json:"channelId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Privacy     string   `json:"privacy"`
	UploadTime  string   `json:"uploadTime"`
	Message     string   `json:"message"`
	DemoMode    bool     `json:"demoMode"`
	Note        string   `json:"note,omitempty"`
}

func (a *App) PublishVideo(w http.ResponseWriter, r *http.Request) {
	var req domain.PublishRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Publisher == nil {
		a.error(w, http.StatusInternalServerError, "Publishing is not configured")
		return
	}
	res, err := a.Publisher.Publish(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		msg := "Failed to publish to YouTube"
		if a.Publisher.Mode() == publish.ModeDemo {
			msg = "Demo YouTube upload simulation failed"
		}
		status := http.StatusInternalServerError
		if code, ok := upstreamStatus(err); ok {
			status = code
		}
		a.Logger.Error().Err(err).Int("status", status).Str("mode", a.Publisher.Mode()).Msg("publish failed")
		a.errorDetails(w, status, msg, err.Error())
		return
	}

	out := publishResponse{
		Success:     true,
		VideoID:     res.VideoID,
		YouTubeURL:  res.URL,
		ChannelID:   res.ChannelID,
		Title:       res.Title,
		Description: res.Description,
		Tags:        res.Tags,
		Privacy:     res.Privacy,
		UploadTime:  res.UploadedAt.UTC().Format(time.RFC3339Nano),
		Message:     res.Message,
		DemoMode:    res.DemoMode,
	}
	if res.DemoMode {
		out.Note = publish.DemoNote
	}
	a.json(w, http.StatusOK, out)
}
