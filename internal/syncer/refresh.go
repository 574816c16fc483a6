package syncer

import (
	"context"
	"log"
	"sync"

	"feeding-tube/internal/feed"
	"feeding-tube/internal/models"
)

// Refresh fetches the recent-uploads feed of every channel, RefreshWave
// channels at a time. A channel whose feed cannot be fetched contributes
// nothing this round. No diffing is done: upserting the result is idempotent.
func (e *Engine) Refresh(ctx context.Context, channels []Channel) []models.Video {
	var all []models.Video
	for start := 0; start < len(channels); start += e.opts.RefreshWave {
		if ctx.Err() != nil {
			break
		}
		wave := channels[start:min(start+e.opts.RefreshWave, len(channels))]
		perChannel := make([][]models.Video, len(wave))

		var wg sync.WaitGroup
		for i, ch := range wave {
			wg.Add(1)
			go func(i int, ch Channel) {
				defer wg.Done()
				perChannel[i] = e.refreshChannel(ctx, ch)
			}(i, ch)
		}
		wg.Wait()

		for _, videos := range perChannel {
			all = append(all, videos...)
		}
	}
	return all
}

func (e *Engine) refreshChannel(ctx context.Context, ch Channel) []models.Video {
	callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	raw, err := e.feeds.FetchRawFeed(callCtx, ch.ID)
	if err != nil {
		log.Printf("Skipping feed for %s: %v", ch.Name, err)
		return nil
	}
	return feed.Parse(raw, ch.ID, ch.Name)
}
