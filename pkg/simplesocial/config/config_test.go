package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

func validConfig() Config {
	cfg := Config{}
	cfg.Content.PostsDirectory = "posts"
	cfg.Content.MaxImages = 10
	cfg.Content.MaxImageSizeMB = 8
	cfg.Content.MaxVideoSizeMB = 100
	cfg.Record.Backend = "dirmove"
	cfg.X.Enabled = true
	cfg.X.APIKey = "k"
	cfg.X.APISecret = "s"
	cfg.X.AccessToken = "t"
	cfg.X.AccessTokenSecret = "ts"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("valid x-only config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("no platforms enabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.X.Enabled = false
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no platforms enabled")
	})

	t.Run("unknown record backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.Record.Backend = "redis"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres backend requires database url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Record.Backend = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.Record.DatabaseURL = "postgres://localhost/bot"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("incomplete x credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.X.AccessTokenSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("instagram requires the archive media host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Instagram.Enabled = true
		cfg.Instagram.AccessToken = "token"
		cfg.Instagram.UserID = "123"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "media host")

		cfg.Archive.Enabled = true
		cfg.Archive.Bucket = "bot-media"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("archive enabled requires bucket", func(t *testing.T) {
		cfg := validConfig()
		cfg.Archive.Enabled = true
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("POSTS_DIRECTORY", "/srv/posts")
	t.Setenv("RECORD_BACKEND", "logfile")
	t.Setenv("THREADS_ENABLED", "true")
	t.Setenv("THREADS_ACCESS_TOKEN", "token")
	t.Setenv("THREADS_USER_ID", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/posts", cfg.Content.PostsDirectory)
	assert.Equal(t, "logfile", cfg.Record.Backend)
	assert.True(t, cfg.Threads.Enabled)
	assert.Equal(t, 500, cfg.Threads.TextLimit)
	assert.Equal(t, 10, cfg.Content.MaxImages)
}

func TestLimits(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, simplesocial.Limits{
		MaxImages:      10,
		MaxImageSizeMB: 8,
		MaxVideoSizeMB: 100,
	}, cfg.Limits())
}

func TestBuildServiceWithLogfileRecord(t *testing.T) {
	cfg := validConfig()
	cfg.Content.PostsDirectory = t.TempDir()
	cfg.Record.Backend = "logfile"

	svc, err := cfg.BuildService(t.Context(), nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
