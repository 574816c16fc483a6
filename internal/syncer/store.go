package syncer

import (
	"context"
	"fmt"
	"log"

	"feeding-tube/internal/models"
)

// Store is the persistence the *AndStore helpers write through.
type Store interface {
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	EnrichedVideoIDs(ctx context.Context, channelID string) (map[string]struct{}, error)
	UpsertVideos(ctx context.Context, videos []models.Video) (int, error)
}

// PrimeAndStore primes ch against what store already holds and upserts the
// fetched videos. Videos fetched before an interruption are still stored.
func (e *Engine) PrimeAndStore(ctx context.Context, store Store, ch Channel, progress ProgressObserver) (*PrimeResult, error) {
	existing, err := store.EnrichedVideoIDs(ctx, ch.ID)
	if err != nil {
		return nil, err
	}

	result, primeErr := e.Prime(ctx, ch, existing, progress)
	if result == nil {
		return nil, primeErr
	}

	if len(result.Videos) > 0 {
		// Stored even when ctx was cancelled mid-prime.
		if _, err := store.UpsertVideos(context.WithoutCancel(ctx), result.Videos); err != nil {
			return result, fmt.Errorf("store primed videos: %w", err)
		}
	}
	log.Printf("Primed %s: %d added, %d skipped, %d failed of %d", ch.Name, result.Added, result.Skipped, result.Failed, result.TotalRemote)
	return result, primeErr
}

// RefreshAndStore refreshes every subscription and upserts what the feeds
// returned. It returns the number of rows written.
func (e *Engine) RefreshAndStore(ctx context.Context, store Store) (int, error) {
	subs, err := store.ListSubscriptions(ctx)
	if err != nil {
		return 0, err
	}
	channels := make([]Channel, 0, len(subs))
	for _, sub := range subs {
		channels = append(channels, ChannelFrom(sub))
	}

	videos := e.Refresh(ctx, channels)
	n, err := store.UpsertVideos(ctx, videos)
	if err != nil {
		return 0, fmt.Errorf("store refreshed videos: %w", err)
	}
	log.Printf("Refreshed %d channels, %d videos", len(channels), n)
	return n, nil
}
