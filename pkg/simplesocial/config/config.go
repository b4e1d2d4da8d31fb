// Package config loads bot configuration from the environment and assembles a
// ready-to-run simplesocial.Service from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-social/pkg/simplesocial"
	s3archive "github.com/tendant/simple-social/pkg/simplesocial/archive/s3"
	"github.com/tendant/simple-social/pkg/simplesocial/platform/instagram"
	"github.com/tendant/simple-social/pkg/simplesocial/platform/threads"
	"github.com/tendant/simple-social/pkg/simplesocial/platform/x"
	"github.com/tendant/simple-social/pkg/simplesocial/record/dirmove"
	"github.com/tendant/simple-social/pkg/simplesocial/record/logfile"
	"github.com/tendant/simple-social/pkg/simplesocial/record/postgres"
)

// Config is the complete bot configuration, read from environment variables.
type Config struct {
	Content   ContentConfig
	Record    RecordConfig
	X         XConfig
	Instagram InstagramConfig
	Threads   ThreadsConfig
	Archive   ArchiveConfig
}

// ContentConfig locates staged content and carries the shared media limits.
type ContentConfig struct {
	PostsDirectory string  `env:"POSTS_DIRECTORY" env-default:"posts"`
	MaxImages      int     `env:"MAX_IMAGES" env-default:"10"`
	MaxImageSizeMB float64 `env:"MAX_IMAGE_SIZE_MB" env-default:"8"`
	MaxVideoSizeMB float64 `env:"MAX_VIDEO_SIZE_MB" env-default:"100"`
}

// RecordConfig selects the publish-record backend. Exactly one backend is
// active per run; all satisfy the same idempotence contract.
type RecordConfig struct {
	Backend     string `env:"RECORD_BACKEND" env-default:"dirmove"` // dirmove, logfile, postgres
	DatabaseURL string `env:"RECORD_DATABASE_URL"`
}

// XConfig holds X (Twitter) credentials.
type XConfig struct {
	Enabled           bool   `env:"X_ENABLED" env-default:"false"`
	APIKey            string `env:"X_API_KEY"`
	APISecret         string `env:"X_API_SECRET"`
	AccessToken       string `env:"X_ACCESS_TOKEN"`
	AccessTokenSecret string `env:"X_ACCESS_TOKEN_SECRET"`
	TextLimit         int    `env:"X_TEXT_LIMIT" env-default:"280"`
}

// InstagramConfig holds Instagram Graph API credentials.
type InstagramConfig struct {
	Enabled     bool   `env:"INSTAGRAM_ENABLED" env-default:"false"`
	AccessToken string `env:"INSTAGRAM_ACCESS_TOKEN"`
	UserID      string `env:"INSTAGRAM_USER_ID"`
	TextLimit   int    `env:"INSTAGRAM_TEXT_LIMIT" env-default:"2200"`
}

// ThreadsConfig holds Threads Graph API credentials.
type ThreadsConfig struct {
	Enabled     bool   `env:"THREADS_ENABLED" env-default:"false"`
	AccessToken string `env:"THREADS_ACCESS_TOKEN"`
	UserID      string `env:"THREADS_USER_ID"`
	TextLimit   int    `env:"THREADS_TEXT_LIMIT" env-default:"500"`
}

// ArchiveConfig holds S3 settings for bundle archival and media hosting.
type ArchiveConfig struct {
	Enabled         bool   `env:"S3_ARCHIVE_ENABLED" env-default:"false"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	KeyPrefix       string `env:"S3_ARCHIVE_PREFIX" env-default:"posted"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
	PresignDuration int    `env:"S3_PRESIGN_DURATION" env-default:"3600"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for startup-fatal problems.
func (c *Config) Validate() error {
	if c.Content.PostsDirectory == "" {
		return errors.New("posts directory is required")
	}

	switch c.Record.Backend {
	case "dirmove", "logfile":
	case "postgres":
		if c.Record.DatabaseURL == "" {
			return errors.New("RECORD_DATABASE_URL is required for the postgres record backend")
		}
	default:
		return fmt.Errorf("record backend must be 'dirmove', 'logfile' or 'postgres', got: %s", c.Record.Backend)
	}

	if !c.X.Enabled && !c.Instagram.Enabled && !c.Threads.Enabled {
		return errors.New("no platforms enabled")
	}

	if c.X.Enabled {
		if c.X.APIKey == "" || c.X.APISecret == "" || c.X.AccessToken == "" || c.X.AccessTokenSecret == "" {
			return errors.New("x is enabled but credentials are incomplete")
		}
	}
	if c.Instagram.Enabled {
		if c.Instagram.AccessToken == "" || c.Instagram.UserID == "" {
			return errors.New("instagram is enabled but credentials are incomplete")
		}
		if !c.Archive.Enabled {
			return errors.New("instagram requires the s3 archive as media host (set S3_ARCHIVE_ENABLED)")
		}
	}
	if c.Threads.Enabled {
		if c.Threads.AccessToken == "" || c.Threads.UserID == "" {
			return errors.New("threads is enabled but credentials are incomplete")
		}
	}

	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return errors.New("s3 archive is enabled but AWS_S3_BUCKET is empty")
	}

	return nil
}

// Limits returns the shared media limits from the content section.
func (c *Config) Limits() simplesocial.Limits {
	return simplesocial.Limits{
		MaxImages:      c.Content.MaxImages,
		MaxImageSizeMB: c.Content.MaxImageSizeMB,
		MaxVideoSizeMB: c.Content.MaxVideoSizeMB,
	}
}

// BuildService assembles the record backend, archiver and platform adapters
// into a Service.
func (c *Config) BuildService(ctx context.Context, logger *slog.Logger) (simplesocial.Service, error) {
	record, err := c.buildRecord(ctx)
	if err != nil {
		return nil, err
	}

	options := []simplesocial.Option{
		simplesocial.WithContentDir(c.Content.PostsDirectory),
		simplesocial.WithRecord(record),
		simplesocial.WithLogger(logger),
	}

	var archive *s3archive.Backend
	if c.Archive.Enabled {
		archive, err = s3archive.New(s3archive.Config{
			Region:          c.Archive.Region,
			Bucket:          c.Archive.Bucket,
			AccessKeyID:     c.Archive.AccessKeyID,
			SecretAccessKey: c.Archive.SecretAccessKey,
			Endpoint:        c.Archive.Endpoint,
			UsePathStyle:    c.Archive.UsePathStyle,
			KeyPrefix:       c.Archive.KeyPrefix,
			PublicBaseURL:   c.Archive.PublicBaseURL,
			PresignDuration: c.Archive.PresignDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("build s3 archive: %w", err)
		}
		options = append(options, simplesocial.WithArchiver(archive))
	}

	if c.X.Enabled {
		platform, err := x.New(x.Config{
			APIKey:            c.X.APIKey,
			APISecret:         c.X.APISecret,
			AccessToken:       c.X.AccessToken,
			AccessTokenSecret: c.X.AccessTokenSecret,
			TextLimit:         c.X.TextLimit,
			Limits:            c.Limits(),
		})
		if err != nil {
			return nil, fmt.Errorf("build x platform: %w", err)
		}
		options = append(options, simplesocial.WithPlatform(platform))
	}

	if c.Instagram.Enabled {
		platform, err := instagram.New(instagram.Config{
			AccessToken: c.Instagram.AccessToken,
			UserID:      c.Instagram.UserID,
			TextLimit:   c.Instagram.TextLimit,
			Limits:      c.Limits(),
		}, archive)
		if err != nil {
			return nil, fmt.Errorf("build instagram platform: %w", err)
		}
		options = append(options, simplesocial.WithPlatform(platform))
	}

	if c.Threads.Enabled {
		var host instagram.MediaHost
		if archive != nil {
			host = archive
		}
		platform, err := threads.New(threads.Config{
			AccessToken: c.Threads.AccessToken,
			UserID:      c.Threads.UserID,
			TextLimit:   c.Threads.TextLimit,
			Limits:      c.Limits(),
		}, host)
		if err != nil {
			return nil, fmt.Errorf("build threads platform: %w", err)
		}
		options = append(options, simplesocial.WithPlatform(platform))
	}

	return simplesocial.New(options...)
}

func (c *Config) buildRecord(ctx context.Context) (simplesocial.PublishRecord, error) {
	switch c.Record.Backend {
	case "dirmove":
		record, err := dirmove.New(c.Content.PostsDirectory)
		if err != nil {
			return nil, fmt.Errorf("build dirmove record: %w", err)
		}
		return record, nil
	case "logfile":
		record, err := logfile.New(c.Content.PostsDirectory)
		if err != nil {
			return nil, fmt.Errorf("build logfile record: %w", err)
		}
		return record, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, c.Record.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return postgres.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unknown record backend: %s", c.Record.Backend)
	}
}
