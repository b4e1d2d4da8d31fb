package logfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogfileRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("missing log file means nothing posted", func(t *testing.T) {
		record, err := New(t.TempDir())
		require.NoError(t, err)

		posted, err := record.PostedBasenames(ctx)
		require.NoError(t, err)
		assert.Empty(t, posted)
	})

	t.Run("mark appends and re-scan excludes the basename", func(t *testing.T) {
		dir := t.TempDir()
		record, err := New(dir)
		require.NoError(t, err)

		require.NoError(t, record.MarkPosted(ctx, "sunset"))
		require.NoError(t, record.MarkPosted(ctx, "storm"))

		posted, err := record.PostedBasenames(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{"sunset": {}, "storm": {}}, posted)

		raw, err := os.ReadFile(filepath.Join(dir, DefaultFileName))
		require.NoError(t, err)
		assert.Equal(t, "sunset\nstorm\n", string(raw))
	})

	t.Run("history survives a restart", func(t *testing.T) {
		dir := t.TempDir()
		record, err := New(dir)
		require.NoError(t, err)
		require.NoError(t, record.MarkPosted(ctx, "sunset"))

		reopened, err := New(dir)
		require.NoError(t, err)
		posted, err := reopened.PostedBasenames(ctx)
		require.NoError(t, err)
		assert.Contains(t, posted, "sunset")
	})

	t.Run("blank lines are tolerated", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
			[]byte("sunset\n\n  \nstorm\n"), 0644))

		record, err := New(dir)
		require.NoError(t, err)
		posted, err := record.PostedBasenames(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{"sunset": {}, "storm": {}}, posted)
	})

	t.Run("marking twice stays idempotent under re-scan", func(t *testing.T) {
		record, err := New(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, record.MarkPosted(ctx, "sunset"))
		require.NoError(t, record.MarkPosted(ctx, "sunset"))

		posted, err := record.PostedBasenames(ctx)
		require.NoError(t, err)
		assert.Len(t, posted, 1)
	})
}
