// Package s3 hosts user images on an S3-compatible object store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/metrics"
	"github.com/videotube/account-service/internal/core/ports"
)

// Config holds the object store settings.
type Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	PublicURL    string
	UsePathStyle bool
}

// objectAPI is the subset of the S3 client the store calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store implements ports.MediaStore.
type Store struct {
	client    objectAPI
	bucket    string
	publicURL string
	now       func() time.Time
	log       zerolog.Logger
}

var _ ports.MediaStore = (*Store)(nil)

// New builds an S3 client with static credentials. Endpoint may point at a
// MinIO or other S3-compatible server.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}
	return newStore(client, cfg.Bucket, publicURL, log), nil
}

func newStore(client objectAPI, bucket, publicURL string, log zerolog.Logger) *Store {
	return &Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		log:       log,
	}
}

func defaultPublicURL(cfg Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Upload puts the staged file under a random key and returns its public URL.
// The local file is removed whether or not the upload succeeds.
func (s *Store) Upload(ctx context.Context, localPath string) (*ports.UploadedMedia, error) {
	if localPath == "" {
		return nil, errors.New("s3: empty path")
	}
	defer s.cleanup(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("s3: open staged file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("s3: stat staged file: %w", err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("s3: detect content type: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("s3: rewind staged file: %w", err)
	}

	key := s.objectKey(mt.Extension())
	contentType := mt.String()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(kindOf(localPath), "failure").Inc()
		return nil, fmt.Errorf("s3: put object: %w", err)
	}
	metrics.MediaUploadsTotal.WithLabelValues(kindOf(localPath), "success").Inc()

	s.log.Debug().Str("key", key).Str("content_type", contentType).Int64("size", info.Size()).Msg("image uploaded")

	return &ports.UploadedMedia{
		URL:         s.publicURL + "/" + key,
		Key:         key,
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func (s *Store) objectKey(ext string) string {
	d := s.now().UTC()
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (s *Store) cleanup(localPath string) {
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", localPath).Msg("failed to remove staged file")
	}
}

// kindOf labels the upload metric from the staged file name, which the
// handlers prefix with the form field name.
func kindOf(localPath string) string {
	base := filepath.Base(localPath)
	if strings.HasPrefix(base, "coverImage") {
		return "coverImage"
	}
	if strings.HasPrefix(base, "avatar") {
		return "avatar"
	}
	return "other"
}
