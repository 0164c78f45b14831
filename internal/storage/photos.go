package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by PhotoStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PhotoStore keeps one profile photo per user in an S3 bucket, at a
// deterministic key so re-uploads overwrite the previous photo.
type PhotoStore struct {
	client  S3API
	bucket  string
	baseURL string
	logger  zerolog.Logger
}

func NewPhotoStore(client S3API, bucket, region, baseURL string, logger zerolog.Logger) *PhotoStore {
	if baseURL == "" && bucket != "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &PhotoStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "photos").Logger(),
	}
}

// Enabled reports whether photo storage is configured.
func (s *PhotoStore) Enabled() bool {
	return s != nil && s.client != nil && s.bucket != ""
}

// Upload stores the photo for a user and returns its public URL.
func (s *PhotoStore) Upload(ctx context.Context, uid, filename, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("storage: photo store not configured")
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("profiles/%s%s", uid, ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}

	url := s.baseURL + "/" + key
	s.logger.Info().Str("uid", uid).Str("key", key).Msg("profile photo stored")
	return url, nil
}
