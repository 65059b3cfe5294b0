package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSStore uploads public objects to a Google Cloud Storage bucket through the
// JSON API.
type GCSStore struct {
	svc    *gcs.Service
	bucket string
}

// NewGCSStore builds a store for bucket. keyFile is an optional service
// account JSON path; without it application default credentials are used.
func NewGCSStore(ctx context.Context, projectID, bucket, keyFile string, opts ...option.ClientOption) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, ErrNoBucket
	}
	if keyFile = strings.TrimSpace(keyFile); keyFile != "" {
		opts = append(opts, option.WithCredentialsFile(keyFile))
	}
	if projectID != "" {
		opts = append(opts, option.WithQuotaProject(projectID))
	}
	svc, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}
	return &GCSStore{svc: svc, bucket: bucket}, nil
}

func (s *GCSStore) Provider() string { return "gcs" }

func (s *GCSStore) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	key, err := sanitizeKey(obj.Key)
	if err != nil {
		return nil, err
	}
	meta := &gcs.Object{
		Name:         key,
		ContentType:  obj.ContentType,
		CacheControl: CacheControlPublic,
	}
	out, err := s.svc.Objects.Insert(s.bucket, meta).
		Media(obj.Body, googleapi.ContentType(obj.ContentType)).
		PredefinedAcl("publicRead").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("storage: gcs upload %s: %w", key, err)
	}
	size := obj.Size
	if out != nil && out.Size > 0 {
		size = int64(out.Size)
	}
	return &StoredObject{
		Key:         key,
		URL:         GCSPublicURL(s.bucket, key),
		Bucket:      s.bucket,
		ContentType: obj.ContentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// GCSPublicURL is the anonymous-read URL of an object.
func GCSPublicURL(bucket, key string) string {
	return gcsPublicHost + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}
