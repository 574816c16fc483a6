// Package config loads settings from the environment, after reading an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"feeding-tube/internal/db"
	"feeding-tube/internal/feed"
	"feeding-tube/internal/syncer"
	"feeding-tube/internal/ytdlp"
)

type Config struct {
	DBPath      string
	LegacyDir   string
	BusyTimeout time.Duration

	YtdlpPath     string
	YtdlpRate     float64
	YtdlpBurst    int
	YouTubeAPIKey string
	CallTimeout   time.Duration
	FeedBaseURL   string

	BatchSize        int
	BatchConcurrency int
	ListLimit        int
	RefreshWave      int

	RedisAddr       string
	Port            string
	RefreshSchedule string
}

// Default returns the configuration used when no variable is set.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DBPath:           filepath.Join(home, ".feeding-tube", "data.db"),
		LegacyDir:        filepath.Join(home, ".config", "youtube-cli"),
		BusyTimeout:      5 * time.Second,
		YtdlpPath:        "yt-dlp",
		YtdlpBurst:       1,
		CallTimeout:      60 * time.Second,
		FeedBaseURL:      feed.DefaultBaseURL,
		BatchSize:        5,
		BatchConcurrency: 50,
		ListLimit:        5000,
		RefreshWave:      20,
		RedisAddr:        "127.0.0.1:6379",
		Port:             "8080",
		RefreshSchedule:  "@every 1h",
	}
}

// Load reads .env if present, then the environment. A malformed value is an
// error rather than silently falling back to its default.
func Load() (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from defaults overridden by the environment.
func FromEnv() (*Config, error) {
	c := Default()
	p := parser{}

	p.str("FT_DB_PATH", &c.DBPath)
	p.str("FT_LEGACY_DIR", &c.LegacyDir)
	p.duration("FT_BUSY_TIMEOUT", &c.BusyTimeout)
	p.str("FT_YTDLP_PATH", &c.YtdlpPath)
	p.float("FT_YTDLP_RATE", &c.YtdlpRate)
	p.integer("FT_YTDLP_BURST", &c.YtdlpBurst)
	p.str("FT_YOUTUBE_API_KEY", &c.YouTubeAPIKey)
	p.duration("FT_CALL_TIMEOUT", &c.CallTimeout)
	p.str("FT_FEED_BASE_URL", &c.FeedBaseURL)
	p.integer("FT_BATCH_SIZE", &c.BatchSize)
	p.integer("FT_BATCH_CONCURRENCY", &c.BatchConcurrency)
	p.integer("FT_LIST_LIMIT", &c.ListLimit)
	p.integer("FT_REFRESH_WAVE", &c.RefreshWave)
	p.str("REDIS_ADDR", &c.RedisAddr)
	p.str("PORT", &c.Port)
	p.str("FT_REFRESH_SCHEDULE", &c.RefreshSchedule)

	if p.err != nil {
		return nil, p.err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("FT_DB_PATH must not be empty")
	case c.BatchSize <= 0:
		return fmt.Errorf("FT_BATCH_SIZE must be positive")
	case c.BatchConcurrency <= 0:
		return fmt.Errorf("FT_BATCH_CONCURRENCY must be positive")
	case c.ListLimit <= 0:
		return fmt.Errorf("FT_LIST_LIMIT must be positive")
	case c.RefreshWave <= 0:
		return fmt.Errorf("FT_REFRESH_WAVE must be positive")
	case c.CallTimeout <= 0:
		return fmt.Errorf("FT_CALL_TIMEOUT must be positive")
	case c.YtdlpRate < 0:
		return fmt.Errorf("FT_YTDLP_RATE must not be negative")
	}
	return nil
}

func (c *Config) DBOptions() db.Options {
	return db.Options{BusyTimeout: c.BusyTimeout, LegacyDir: c.LegacyDir}
}

func (c *Config) YtdlpOptions() ytdlp.Options {
	return ytdlp.Options{Path: c.YtdlpPath, Rate: c.YtdlpRate, Burst: c.YtdlpBurst}
}

// SyncOptions carries the batch and wave sizes; retry policies keep their defaults.
func (c *Config) SyncOptions() syncer.Options {
	opts := syncer.DefaultOptions()
	opts.BatchSize = c.BatchSize
	opts.Concurrency = c.BatchConcurrency
	opts.ListLimit = c.ListLimit
	opts.RefreshWave = c.RefreshWave
	opts.CallTimeout = c.CallTimeout
	return opts
}

// parser applies environment overrides, keeping the first parse error.
type parser struct {
	err error
}

func (p *parser) str(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (p *parser) integer(key string, dst *int) {
	p.parse(key, func(v string) error {
		n, err := strconv.Atoi(v)
		*dst = n
		return err
	})
}

func (p *parser) float(key string, dst *float64) {
	p.parse(key, func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		*dst = f
		return err
	})
}

func (p *parser) duration(key string, dst *time.Duration) {
	p.parse(key, func(v string) error {
		d, err := time.ParseDuration(v)
		*dst = d
		return err
	})
}

func (p *parser) parse(key string, set func(string) error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" || p.err != nil {
		return
	}
	if err := set(v); err != nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}
