package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "data.db", filepath.Base(c.DBPath))
	assert.Equal(t, 5, c.BatchSize)
	assert.Equal(t, 50, c.BatchConcurrency)
	assert.Equal(t, 5000, c.ListLimit)
	assert.Equal(t, 20, c.RefreshWave)
	assert.Equal(t, 60*time.Second, c.CallTimeout)
	assert.Equal(t, "https://www.youtube.com/feeds/videos.xml", c.FeedBaseURL)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "@every 1h", c.RefreshSchedule)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FT_DB_PATH", "/tmp/ft.db")
	t.Setenv("FT_BATCH_SIZE", "10")
	t.Setenv("FT_CALL_TIMEOUT", "90s")
	t.Setenv("FT_YTDLP_RATE", "2.5")
	t.Setenv("FT_YOUTUBE_API_KEY", "key")
	t.Setenv("PORT", "9000")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ft.db", c.DBPath)
	assert.Equal(t, 10, c.BatchSize)
	assert.Equal(t, 90*time.Second, c.CallTimeout)
	assert.Equal(t, 2.5, c.YtdlpRate)
	assert.Equal(t, "key", c.YouTubeAPIKey)
	assert.Equal(t, "9000", c.Port)

	opts := c.SyncOptions()
	assert.Equal(t, 10, opts.BatchSize)
	assert.Equal(t, 90*time.Second, opts.CallTimeout)
	assert.Equal(t, 3, opts.ListPolicy.Attempts)
	assert.Equal(t, "/tmp/ft.db", c.DBPath)
	assert.Equal(t, c.LegacyDir, c.DBOptions().LegacyDir)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		"FT_BATCH_SIZE":   "five",
		"FT_CALL_TIMEOUT": "60",
		"FT_YTDLP_RATE":   "fast",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestFromEnvValidates(t *testing.T) {
	t.Setenv("FT_REFRESH_WAVE", "0")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "FT_REFRESH_WAVE")
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FT_LIST_LIMIT=123\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("FT_LIST_LIMIT", "")
	os.Unsetenv("FT_LIST_LIMIT")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 123, c.ListLimit)
}
