package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"veogallery/internal/infra/metrics"
)

// CacheControlPublic is applied to every uploaded video object.
const CacheControlPublic = "public, max-age=31536000"

// ErrNoBucket is returned when the selected provider has no bucket configured.
var ErrNoBucket = errors.New("storage: bucket name not configured")

// Object is an upload request.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredObject describes an object after a successful upload.
type StoredObject struct {
	Key         string    `json:"fileName"`
	URL         string    `json:"publicUrl"`
	Bucket      string    `json:"bucket,omitempty"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// ObjectStore persists objects and exposes them under a public URL.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (*StoredObject, error)
	Provider() string
}

// NewObjectKey returns videos/<uuid>.<ext>, taking the extension from the
// client-supplied file name and falling back to mp4.
func NewObjectKey(originalName string) string {
	ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(originalName)), ".")
	ext = strings.ToLower(ext)
	if ext == "" || strings.ContainsAny(ext, "/\\ ") {
		ext = "mp4"
	}
	return "videos/" + uuid.NewString() + "." + ext
}

type instrumented struct {
	next ObjectStore
}

// Instrument wraps store so each Put is counted in the upload metrics.
func Instrument(store ObjectStore) ObjectStore {
	if store == nil {
		return nil
	}
	return &instrumented{next: store}
}

func (i *instrumented) Provider() string { return i.next.Provider() }

func (i *instrumented) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	out, err := i.next.Put(ctx, obj)
	var size int64
	if out != nil {
		size = out.Size
	}
	metrics.ObserveUpload(i.next.Provider(), size, err)
	return out, err
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
