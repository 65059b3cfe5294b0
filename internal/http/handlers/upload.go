package handlers

import (
	"errors"
	"net/http"
	"strings"

	"veogallery/internal/storage"
)

// MaxUploadBytes is the largest accepted video upload.
const MaxUploadBytes = 100 << 20

type uploadResponse struct {
	URL          string `json:"url"`
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

func (a *App) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "File too large (max 100MB)")
			return
		}
		a.error(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		a.error(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer file.Close()

	if header.Size > MaxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "File too large (max 100MB)")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		a.error(w, http.StatusBadRequest, "Only video files are allowed")
		return
	}
	if a.Storage == nil {
		a.error(w, http.StatusInternalServerError, "GCS bucket name not configured")
		return
	}

	obj, err := a.Storage.Put(r.Context(), storage.Object{
		Key:         storage.NewObjectKey(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("provider", a.Storage.Provider()).Msg("upload failed")
		a.error(w, http.StatusInternalServerError, "Failed to upload to cloud storage")
		return
	}
	a.json(w, http.StatusOK, uploadResponse{
		URL:          obj.URL,
		FileName:     obj.Key,
		OriginalName: header.Filename,
		Size:         header.Size,
	})
}
