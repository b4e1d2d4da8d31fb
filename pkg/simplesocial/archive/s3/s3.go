// Package s3 archives published bundles to S3-compatible storage and serves
// as the media host for platforms that need publicly reachable media URLs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config options for the S3 archive backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	KeyPrefix       string // Key prefix for archived bundles (default: "posted")
	PresignDuration int    // Duration in seconds for presigned media URLs (default: 3600)

	// PublicBaseURL, when set, is joined with the object key for media URLs
	// instead of presigning (for buckets behind a CDN or public policy).
	PublicBaseURL string
}

// Backend archives bundle files to a bucket. It implements
// simplesocial.Archiver and the instagram.MediaHost contract.
type Backend struct {
	client          *s3.Client
	uploader        *manager.Uploader
	presignClient   *s3.PresignClient
	presignDuration time.Duration
	bucket          string
	keyPrefix       string
	publicBaseURL   string
}

// New creates a new S3 archive backend
func New(cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "posted"
	}
	if cfg.PresignDuration == 0 {
		cfg.PresignDuration = 3600 // 1 hour default
	}

	// Set up AWS config
	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		// Use provided credentials
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Backend{
		client:          client,
		uploader:        manager.NewUploader(client),
		presignClient:   s3.NewPresignClient(client),
		presignDuration: time.Duration(cfg.PresignDuration) * time.Second,
		bucket:          cfg.Bucket,
		keyPrefix:       strings.Trim(cfg.KeyPrefix, "/"),
		publicBaseURL:   strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// ArchiveBundle uploads every file of a committed bundle under
// <prefix>/<basename>/<filename>.
func (b *Backend) ArchiveBundle(ctx context.Context, basename string, files []string) error {
	for _, file := range files {
		key := path.Join(b.keyPrefix, basename, filepath.Base(file))
		if err := b.uploadFile(ctx, key, file); err != nil {
			return fmt.Errorf("archive %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// HostFile uploads a media file under a staging prefix and returns a URL the
// platform APIs can fetch it from: the public base URL when configured,
// otherwise a presigned GET URL.
func (b *Backend) HostFile(ctx context.Context, file string) (string, error) {
	key := path.Join(b.keyPrefix, "staging", filepath.Base(file))
	if err := b.uploadFile(ctx, key, file); err != nil {
		return "", fmt.Errorf("host %s: %w", filepath.Base(file), err)
	}

	if b.publicBaseURL != "" {
		return b.publicBaseURL + "/" + key, nil
	}

	presigned, err := b.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(b.presignDuration))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return presigned.URL, nil
}

func (b *Backend) uploadFile(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(file))); ct != "" {
		input.ContentType = aws.String(ct)
	}

	_, err = b.uploader.Upload(ctx, input)
	return err
}
