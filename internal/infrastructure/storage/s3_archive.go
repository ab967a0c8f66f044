// Package storage archives raw catalog feeds in object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	infraconfig "github.com/marketplace/backend/internal/infrastructure/config"
)

var _ appcatalog.FeedArchive = (*S3FeedArchive)(nil)

const (
	feedKeyPrefix         = "feeds/"
	feedContentType       = "application/yaml"
	defaultPresignExpires = 15 * time.Minute
)

// ArchivedFeed describes one stored feed document
type ArchivedFeed struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// FeedKey returns the object key for a feed archived at t
func FeedKey(ownerID int64, t time.Time) string {
	return fmt.Sprintf("%s%d/%d.yaml", feedKeyPrefix, ownerID, t.UnixNano())
}

// S3FeedArchive stores feed documents in an S3-compatible bucket
// (AWS S3, MinIO, RustFS).
type S3FeedArchive struct {
	client         *s3.Client
	presignClient  *s3.PresignClient
	bucket         string
	presignExpires time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// S3FeedArchiveOption is a functional option for configuring S3FeedArchive
type S3FeedArchiveOption func(*S3FeedArchive)

// WithLogger sets a custom logger for S3FeedArchive
func WithLogger(logger *zap.Logger) S3FeedArchiveOption {
	return func(s *S3FeedArchive) {
		s.logger = logger
	}
}

// WithPresignExpiration sets how long download links stay valid
func WithPresignExpiration(d time.Duration) S3FeedArchiveOption {
	return func(s *S3FeedArchive) {
		s.presignExpires = d
	}
}

// NewS3FeedArchive creates an archive from configuration
func NewS3FeedArchive(cfg *infraconfig.StorageConfig, opts ...S3FeedArchiveOption) (*S3FeedArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archive := &S3FeedArchive{
		client:         client,
		presignClient:  s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		presignExpires: defaultPresignExpires,
		logger:         zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3FeedArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating feed archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads body under feeds/<owner>/<unix_nano>.yaml
func (s *S3FeedArchive) Archive(ctx context.Context, ownerID int64, body []byte) (string, error) {
	key := FeedKey(ownerID, s.now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(feedContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload feed: %w", err)
	}
	s.logger.Debug("feed archived", zap.String("key", key), zap.Int("bytes", len(body)))
	return key, nil
}

// List returns the archived feeds of ownerID, or of every owner when ownerID is 0
func (s *S3FeedArchive) List(ctx context.Context, ownerID int64) ([]ArchivedFeed, error) {
	prefix := feedKeyPrefix
	if ownerID > 0 {
		prefix = fmt.Sprintf("%s%d/", feedKeyPrefix, ownerID)
	}

	var feeds []ArchivedFeed
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list feeds: %w", err)
		}
		for _, obj := range page.Contents {
			feeds = append(feeds, ArchivedFeed{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return feeds, nil
}

// DownloadURL returns a presigned GET link for key
func (s *S3FeedArchive) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpires))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, s.now().Add(s.presignExpires), nil
}

// Bucket returns the bucket name
func (s *S3FeedArchive) Bucket() string {
	return s.bucket
}
