package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"feeding-tube/internal/models"
	"feeding-tube/internal/retry"
)

var errThrottled = errors.New("ERROR: HTTP Error 429: Too Many Requests")

type fakeProvider struct {
	mu sync.Mutex

	listed   []string
	listErrs []error // returned by successive list calls; nil entries succeed
	listHang bool

	// batchErr, when set, decides the failure of a batch fetch.
	batchErr   func(ids []string) error
	batchDelay time.Duration

	listCalls   int
	fetchCalls  [][]string
	inFlight    int
	maxInFlight int
}

func (f *fakeProvider) ListVideoIDs(ctx context.Context, channelURL string, limit int) ([]string, error) {
	f.mu.Lock()
	call := f.listCalls
	f.listCalls++
	hang := f.listHang
	var err error
	if call < len(f.listErrs) {
		err = f.listErrs[call]
	}
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, fmt.Errorf("yt-dlp killed: %w", ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	return f.listed, nil
}

func (f *fakeProvider) FetchMetadata(ctx context.Context, ids []string) ([]models.VideoMetadata, error) {
	f.mu.Lock()
	f.fetchCalls = append(f.fetchCalls, append([]string(nil), ids...))
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.batchDelay > 0 {
		select {
		case <-time.After(f.batchDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.batchErr != nil {
		if err := f.batchErr(ids); err != nil {
			return nil, err
		}
	}

	duration := int64(120)
	metas := make([]models.VideoMetadata, 0, len(ids))
	for _, id := range ids {
		metas = append(metas, models.VideoMetadata{
			ID:         id,
			Title:      "Title " + id,
			UploadDate: "20240101",
			Duration:   &duration,
		})
	}
	return metas, nil
}

func (f *fakeProvider) fetchedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, call := range f.fetchCalls {
		ids = append(ids, call...)
	}
	return ids
}

func (f *fakeProvider) fetchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetchCalls)
}

type fakeFeeds struct {
	mu          sync.Mutex
	feeds       map[string]string
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func (f *fakeFeeds) FetchRawFeed(ctx context.Context, channelID string) (string, error) {
	f.mu.Lock()
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	raw, ok := f.feeds[channelID]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if !ok {
		return "", fmt.Errorf("status 404")
	}
	return raw, nil
}

type recordedProgress struct {
	mu      sync.Mutex
	updates []Progress
}

func (r *recordedProgress) Progress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, Progress{Done: done, Total: total})
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}

func set(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func testOptions() Options {
	return Options{
		BatchSize:   5,
		Concurrency: 50,
		ListLimit:   5000,
		RefreshWave: 20,
		CallTimeout: time.Second,
		ListPolicy:  retry.Policy{Attempts: 3, BaseDelay: time.Millisecond},
		BatchPolicy: retry.Policy{Attempts: 2, BaseDelay: time.Millisecond},
	}
}

var testChannel = Channel{ID: "UC1", Name: "Channel One", URL: "https://www.youtube.com/@one"}
