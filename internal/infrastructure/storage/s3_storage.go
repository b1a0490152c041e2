package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/utils/attachmentid"
)

var errStorageDisabled = errors.New("attachment storage backend is not configured; set ATTACH_S3_* to enable uploads")

// S3Storage stores attachments on S3-compatible storage. Download links are
// presigned GETs with a configurable lifetime.
type S3Storage struct {
	bucket    string
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       *config.Config
	log       zerolog.Logger
	disabled  bool
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket: strings.TrimSpace(cfg.S3Bucket),
		cfg:    cfg,
		log:    logger,
	}

	if storage.bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		logger.Warn().Msg("ATTACH_S3_BUCKET or credentials are not set; attachment uploads will be disabled until configured")
		storage.disabled = true
		return storage, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	storage.presigner = s3.NewPresignClient(storage.client)
	return storage, nil
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

// Upload puts the file under kaizen-files/<number>/ and returns a presigned
// download link alongside the object key.
func (s *S3Storage) Upload(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*domain.StoredFile, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("kaizen-files/%s/%s_%s", kaizenNumber, attachmentid.New(), filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.S3PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign object: %w", err)
	}

	s.log.Info().
		Str("kaizen_number", kaizenNumber).
		Str("key", key).
		Msg("uploaded attachment to s3")

	return &domain.StoredFile{
		ID:          key,
		Name:        filename,
		WebURL:      presigned.URL,
		DownloadURL: presigned.URL,
	}, nil
}

// Health performs a HeadBucket request; a disabled backend reports healthy.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
