package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sony/gobreaker/v2"

	"community-api/pkg/apierror"
)

// ObjectAPI is the part of *s3.Client the backend needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Timeout       time.Duration
}

// NewS3Client builds a client for AWS or any S3-compatible endpoint.
// Static credentials win over the default chain when both keys are set.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Backend uploads media to a bucket and serves it from PublicBaseURL.
type S3Backend struct {
	client  ObjectAPI
	cfg     S3Config
	sources *SourceReader
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

func NewS3Backend(client ObjectAPI, cfg S3Config, sources *SourceReader, cb *gobreaker.CircuitBreaker[struct{}], logger *slog.Logger) *S3Backend {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &S3Backend{client: client, cfg: cfg, sources: sources, breaker: cb, logger: logger}
}

func (b *S3Backend) Name() string {
	return "s3"
}

func (b *S3Backend) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	publicID, err := publicIDFor(in)
	if err != nil {
		return UploadResult{}, err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	src, err := b.sources.Read(ctx, in.Source)
	if err != nil {
		return UploadResult{}, err
	}

	err = b.execute(func() error {
		_, putErr := b.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(b.cfg.Bucket),
			Key:           aws.String(publicID),
			Body:          bytes.NewReader(src.Body),
			ContentType:   aws.String(src.ContentType),
			ContentLength: aws.Int64(int64(len(src.Body))),
		})
		return putErr
	})
	if err != nil {
		return UploadResult{}, apierror.AssetStore("upload media object", err)
	}

	b.logger.InfoContext(ctx, "media object uploaded",
		slog.String("public_id", publicID),
		slog.Int("bytes", len(src.Body)),
	)

	return UploadResult{PublicID: publicID, URL: b.cfg.PublicBaseURL + "/" + publicID}, nil
}

func (b *S3Backend) Destroy(ctx context.Context, publicID string) error {
	key, err := ValidateKey(publicID)
	if err != nil {
		return err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	err = b.execute(func() error {
		_, delErr := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.cfg.Bucket),
			Key:    aws.String(key),
		})
		return delErr
	})
	if err != nil {
		return apierror.AssetStore("delete media object", err)
	}

	b.logger.InfoContext(ctx, "media object deleted", slog.String("public_id", key))
	return nil
}

func (b *S3Backend) execute(fn func() error) error {
	if b.breaker == nil {
		return fn()
	}
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("object store unavailable: %w", err)
	}
	return err
}

func (b *S3Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.cfg.Timeout)
}
