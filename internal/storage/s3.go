package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3PutAPI is the slice of the S3 client the store needs.
type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads public-read objects to an S3 (or S3-compatible) bucket.
type S3Store struct {
	client  s3PutAPI
	bucket  string
	baseURL string
}

// NewS3Store loads the default AWS credential chain. A non-empty endpoint
// targets an S3-compatible server such as MinIO with path-style addressing.
// publicBaseURL overrides the derived object URL, e.g. for a CDN in front of
// the bucket.
func NewS3Store(ctx context.Context, bucket, region, endpoint, publicBaseURL string) (*S3Store, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, ErrNoBucket
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, s3EndpointOptions(endpoint))
	return newS3Store(client, bucket, awsCfg.Region, endpoint, publicBaseURL), nil
}

// s3EndpointOptions points the client at endpoint and switches to path-style
// requests, which S3-compatible servers expect. It is a no-op for AWS.
func s3EndpointOptions(endpoint string) func(*s3.Options) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return func(o *s3.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}
}

func newS3Store(client s3PutAPI, bucket, region, endpoint, publicBaseURL string) *S3Store {
	base := strings.TrimSpace(publicBaseURL)
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	switch {
	case base != "":
	case endpoint != "":
		base = endpoint + "/" + bucket
	default:
		if region == "" {
			region = "us-east-1"
		}
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{client: client, bucket: bucket, baseURL: base}
}

func (s *S3Store) Provider() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	key, err := sanitizeKey(obj.Key)
	if err != nil {
		return nil, err
	}
	in := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         obj.Body,
		CacheControl: aws.String(CacheControlPublic),
		ACL:          s3types.ObjectCannedACLPublicRead,
	}
	if obj.ContentType != "" {
		in.ContentType = aws.String(obj.ContentType)
	}
	if obj.Size > 0 {
		in.ContentLength = aws.Int64(obj.Size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("storage: s3 upload %s: %w", key, err)
	}
	return &StoredObject{
		Key:         key,
		URL:         joinURL(s.baseURL, key),
		Bucket:      s.bucket,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		UploadedAt:  time.Now().UTC(),
	}, nil
}
