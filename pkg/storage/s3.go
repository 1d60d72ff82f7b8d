package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds configuration for S3 storage.
type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UsePathStyle    bool          `mapstructure:"use_path_style"` // MinIO
	PublicURL       string        `mapstructure:"public_url"`     // CDN or public bucket prefix
	URLExpiry       time.Duration `mapstructure:"url_expiry"`     // presigned URL lifetime without PublicURL
}

// S3Storage stores objects in S3 or MinIO.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	publicURL     string
	usePathStyle  bool
	urlExpiry     time.Duration
}

// NewS3Storage creates an S3 client. Static credentials are used when
// configured; otherwise the default AWS chain applies.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 7 * 24 * time.Hour
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicURL:     strings.TrimSuffix(cfg.PublicURL, "/"),
		usePathStyle:  cfg.UsePathStyle,
		urlExpiry:     cfg.URLExpiry,
	}, nil
}

// Write uploads r under key.
func (s *S3Storage) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Delete removes key. S3 treats deleting a missing key as success.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

// Exists issues a HEAD request for key.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) || strings.Contains(err.Error(), "StatusCode: 404") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// URL returns the public URL when configured, else a presigned GET URL.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

// KeyFromURL accepts both public and presigned URLs.
func (s *S3Storage) KeyFromURL(rawURL string) (string, error) {
	if s.publicURL != "" {
		if key, ok := strings.CutPrefix(rawURL, s.publicURL+"/"); ok && key != "" {
			return key, nil
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrForeignURL
	}
	path := strings.TrimPrefix(u.Path, "/")
	if s.usePathStyle {
		var ok bool
		if path, ok = strings.CutPrefix(path, s.bucket+"/"); !ok {
			return "", ErrForeignURL
		}
	} else if !strings.HasPrefix(u.Host, s.bucket+".") {
		return "", ErrForeignURL
	}
	if path == "" {
		return "", ErrForeignURL
	}
	return path, nil
}

var _ Storage = (*S3Storage)(nil)
