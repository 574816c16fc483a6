// Package syncer backfills channel history (priming) and polls channel feeds
// for new uploads (refresh).
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"feeding-tube/internal/models"
	"feeding-tube/internal/retry"
)

var (
	// ErrListFailed is returned when a channel's catalog could not be listed.
	ErrListFailed = errors.New("failed to list videos")
	// ErrTimeout marks a provider call that exceeded Options.CallTimeout.
	ErrTimeout = errors.New("provider call timed out")
	// ErrRateLimited marks a provider failure whose message signals throttling.
	ErrRateLimited = errors.New("rate limited")
)

// Provider lists a channel's videos and fetches their full metadata.
type Provider interface {
	ListVideoIDs(ctx context.Context, channelURL string, limit int) ([]string, error)
	FetchMetadata(ctx context.Context, ids []string) ([]models.VideoMetadata, error)
}

// FeedSource returns a channel's raw recent-uploads feed.
type FeedSource interface {
	FetchRawFeed(ctx context.Context, channelID string) (string, error)
}

type Channel struct {
	ID   string
	Name string
	URL  string
}

// ChannelFrom converts a subscription.
func ChannelFrom(sub models.Subscription) Channel {
	return Channel{ID: sub.ID, Name: sub.Name, URL: sub.URL}
}

type Options struct {
	// BatchSize is how many ids one metadata call fetches.
	BatchSize int
	// Concurrency caps in-flight batch calls for one Prime call.
	Concurrency int
	// ListLimit caps how many ids are listed per channel.
	ListLimit int
	// RefreshWave is how many feeds Refresh fetches at once.
	RefreshWave int
	// CallTimeout bounds every provider call.
	CallTimeout time.Duration
	ListPolicy  retry.Policy
	BatchPolicy retry.Policy
}

func DefaultOptions() Options {
	return Options{
		BatchSize:   5,
		Concurrency: 50,
		ListLimit:   5000,
		RefreshWave: 20,
		CallTimeout: 60 * time.Second,
		ListPolicy:  retry.Policy{Attempts: 3, BaseDelay: 2 * time.Second},
		BatchPolicy: retry.Policy{Attempts: 2, BaseDelay: time.Second},
	}
}

// withDefaults fills every unset field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.ListLimit <= 0 {
		o.ListLimit = d.ListLimit
	}
	if o.RefreshWave <= 0 {
		o.RefreshWave = d.RefreshWave
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = d.CallTimeout
	}
	if o.ListPolicy.Attempts <= 0 {
		o.ListPolicy = d.ListPolicy
	}
	if o.BatchPolicy.Attempts <= 0 {
		o.BatchPolicy = d.BatchPolicy
	}
	return o
}

type Engine struct {
	provider Provider
	feeds    FeedSource
	opts     Options
}

func New(provider Provider, feeds FeedSource, opts Options) *Engine {
	return &Engine{provider: provider, feeds: feeds, opts: opts.withDefaults()}
}

// IsThrottled reports whether err's text carries a rate-limit marker.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(strings.ToLower(msg), "rate limit")
}

func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// call runs fn under CallTimeout and tags its failure as a timeout or
// throttling so the retry policy can tell them apart from hard failures.
func (e *Engine) call(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	err := fn(callCtx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case IsThrottled(err):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	default:
		return err
	}
}
