package syncer

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"feeding-tube/internal/models"
	"feeding-tube/internal/retry"
)

type PrimeResult struct {
	Added       int            `json:"added"`
	TotalRemote int            `json:"totalRemote"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	Videos      []models.Video `json:"-"`
}

type batchResult struct {
	size   int
	videos []models.Video
	err    error
}

// Prime backfills a channel's full catalog. Ids in existing already carry
// metadata and are never fetched again. The rest are fetched in batches,
// at most Options.Concurrency at a time.
//
// Only a failure to list the catalog is returned as an error. A batch that
// still fails after its retries adds its size to Failed and the other batches
// carry on, so a partial result is the normal outcome. If ctx is cancelled
// the batches not yet started are counted as failed and the partial result
// is returned together with the context's error.
func (e *Engine) Prime(ctx context.Context, ch Channel, existing map[string]struct{}, progress ProgressObserver) (*PrimeResult, error) {
	if progress == nil {
		progress = nopObserver{}
	}

	var listed []string
	err := retry.Do(ctx, e.opts.ListPolicy, retryable, func(ctx context.Context) error {
		return e.call(ctx, func(ctx context.Context) error {
			var err error
			listed, err = e.provider.ListVideoIDs(ctx, ch.URL, e.opts.ListLimit)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", ch.Name, ErrListFailed, err)
	}

	toFetch := diff(listed, existing)
	total := len(toFetch)
	result := &PrimeResult{TotalRemote: len(listed), Skipped: len(existing), Videos: []models.Video{}}

	progress.Progress(0, total)
	if total == 0 {
		return result, nil
	}

	batches := chunk(toFetch, e.opts.BatchSize)
	results := make(chan batchResult, len(batches))
	sem := semaphore.NewWeighted(int64(e.opts.Concurrency))
	var processed atomic.Int64

	for _, batch := range batches {
		go func(batch []string) {
			r := batchResult{size: len(batch)}
			if r.err = sem.Acquire(ctx, 1); r.err == nil {
				r.videos, r.err = e.fetchBatch(ctx, ch, batch)
				sem.Release(1)
			}
			processed.Add(int64(len(batch)))
			results <- r
		}(batch)
	}

	reported := 0
	for range batches {
		r := <-results
		if r.err != nil || len(r.videos) == 0 {
			result.Failed += r.size
			if r.err != nil && ctx.Err() == nil {
				log.Printf("Batch of %d videos failed for %s: %v", r.size, ch.Name, r.err)
			}
		} else {
			result.Videos = append(result.Videos, r.videos...)
		}

		if done := min(int(processed.Load()), total); done > reported {
			reported = done
			progress.Progress(done, total)
		}
	}
	if reported < total {
		progress.Progress(total, total)
	}

	result.Added = len(result.Videos)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("prime %s interrupted: %w", ch.Name, err)
	}
	return result, nil
}

func (e *Engine) fetchBatch(ctx context.Context, ch Channel, ids []string) ([]models.Video, error) {
	var metas []models.VideoMetadata
	err := retry.Do(ctx, e.opts.BatchPolicy, retryable, func(ctx context.Context) error {
		return e.call(ctx, func(ctx context.Context) error {
			var err error
			metas, err = e.provider.FetchMetadata(ctx, ids)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(metas))
	for _, m := range metas {
		if m.ID == "" {
			continue
		}
		videos = append(videos, m.ToVideo(ch.ID, ch.Name))
	}
	return videos, nil
}

// diff returns the listed ids not in existing, in listing order and without repeats.
func diff(listed []string, existing map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(listed))
	var out []string
	for _, id := range listed {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		batches = append(batches, ids[start:min(start+size, len(ids))])
	}
	return batches
}
