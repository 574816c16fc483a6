package syncer

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeding-tube/internal/retry"
)

func TestPrimeFetchesOnlyMissingIDs(t *testing.T) {
	listed := ids("v", 10)
	existing := set(listed[:7]...)
	provider := &fakeProvider{listed: listed}

	result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, existing, nil)
	require.NoError(t, err)

	fetched := provider.fetchedIDs()
	assert.ElementsMatch(t, listed[7:], fetched)
	for _, id := range fetched {
		assert.NotContains(t, existing, id)
	}
	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 7, result.Skipped)
	assert.Equal(t, 10, result.TotalRemote)
	assert.Equal(t, 0, result.Failed)

	for _, v := range result.Videos {
		assert.Equal(t, "UC1", *v.ChannelID)
		assert.Equal(t, "Channel One", *v.ChannelName)
		assert.NotNil(t, v.DurationSeconds)
	}
}

func TestPrimeBatchesBySize(t *testing.T) {
	provider := &fakeProvider{listed: ids("v", 12)}
	opts := testOptions()
	opts.BatchSize = 5

	result, err := New(provider, nil, opts).Prime(context.Background(), testChannel, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Added)
	assert.Equal(t, 3, provider.fetchCallCount())

	var sizes []int
	for _, call := range provider.fetchCalls {
		sizes = append(sizes, len(call))
	}
	slices.Sort(sizes)
	assert.Equal(t, []int{2, 5, 5}, sizes)
}

func TestPrimeAlreadyPrimedMakesNoFetches(t *testing.T) {
	listed := ids("v", 6)
	provider := &fakeProvider{listed: listed}
	progress := &recordedProgress{}

	result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, set(listed...), progress)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 6, result.Skipped)
	assert.Equal(t, 0, provider.fetchCallCount())
	assert.Equal(t, []Progress{{0, 0}}, progress.updates)
}

func TestPrimeDeduplicatesListing(t *testing.T) {
	provider := &fakeProvider{listed: []string{"a", "b", "a", "c", "b"}}

	result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, nil, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, provider.fetchedIDs())
	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 5, result.TotalRemote)
}

func TestPrimePartialFailure(t *testing.T) {
	listed := ids("v", 20)
	provider := &fakeProvider{
		listed: listed,
		batchErr: func(ids []string) error {
			if slices.Contains(ids, "v07") {
				return errThrottled
			}
			return nil
		},
	}

	result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, result.Added)
	assert.Equal(t, 5, result.Failed)
	assert.Len(t, result.Videos, 15)

	attempts := 0
	for _, call := range provider.fetchCalls {
		if slices.Contains(call, "v07") {
			attempts++
		}
	}
	assert.Equal(t, 2, attempts, "throttled batch is retried once")
}

func TestPrimeFailedCountsActualBatchLength(t *testing.T) {
	provider := &fakeProvider{
		listed:   ids("v", 7),
		batchErr: func([]string) error { return errors.New("ERROR: Private video") },
	}

	result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 7, result.Failed)
	assert.Equal(t, 2, provider.fetchCallCount(), "hard failures are not retried")
}

func TestPrimeProgressIsMonotoneAndCompletes(t *testing.T) {
	provider := &fakeProvider{
		listed:     ids("v", 13),
		batchDelay: time.Millisecond,
		batchErr: func(ids []string) error {
			if slices.Contains(ids, "v04") {
				return errors.New("boom")
			}
			return nil
		},
	}
	opts := testOptions()
	opts.BatchSize = 2
	opts.Concurrency = 3
	progress := &recordedProgress{}

	_, err := New(provider, nil, opts).Prime(context.Background(), testChannel, nil, progress)
	require.NoError(t, err)

	updates := progress.updates
	require.NotEmpty(t, updates)
	assert.Equal(t, Progress{0, 13}, updates[0])
	assert.Equal(t, Progress{13, 13}, updates[len(updates)-1])
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Done, updates[i-1].Done)
		assert.LessOrEqual(t, updates[i].Done, 13)
		assert.Equal(t, 13, updates[i].Total)
	}
}

func TestPrimeBoundsConcurrency(t *testing.T) {
	provider := &fakeProvider{listed: ids("v", 40), batchDelay: 5 * time.Millisecond}
	opts := testOptions()
	opts.BatchSize = 2
	opts.Concurrency = 3

	result, err := New(provider, nil, opts).Prime(context.Background(), testChannel, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 40, result.Added)
	assert.LessOrEqual(t, provider.maxInFlight, 3)
}

func TestPrimeListRetriesOnlyOnThrottling(t *testing.T) {
	t.Run("throttled then ok", func(t *testing.T) {
		provider := &fakeProvider{listed: ids("v", 2), listErrs: []error{errThrottled, errThrottled}}
		result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, provider.listCalls)
		assert.Equal(t, 2, result.Added)
	})

	t.Run("throttled every time", func(t *testing.T) {
		provider := &fakeProvider{listErrs: []error{errThrottled, errThrottled, errThrottled, errThrottled}}
		result, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, nil, nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrListFailed)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 3, provider.listCalls)
	})

	t.Run("hard failure", func(t *testing.T) {
		provider := &fakeProvider{listErrs: []error{errors.New("ERROR: This channel does not exist")}}
		_, err := New(provider, nil, testOptions()).Prime(context.Background(), testChannel, nil, nil)
		assert.ErrorIs(t, err, ErrListFailed)
		assert.NotErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 1, provider.listCalls)
		assert.Equal(t, 0, provider.fetchCallCount())
	})
}

func TestPrimeListTimeoutIsRetried(t *testing.T) {
	provider := &fakeProvider{listHang: true}
	opts := testOptions()
	opts.CallTimeout = 10 * time.Millisecond

	_, err := New(provider, nil, opts).Prime(context.Background(), testChannel, nil, nil)
	assert.ErrorIs(t, err, ErrListFailed)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 3, provider.listCalls)
}

func TestPrimeCancellation(t *testing.T) {
	provider := &fakeProvider{listed: ids("v", 50), batchDelay: time.Hour}
	opts := testOptions()
	opts.Concurrency = 2
	progress := &recordedProgress{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	var result *PrimeResult
	var err error
	go func() {
		result, err = New(provider, nil, opts).Prime(ctx, testChannel, nil, progress)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("prime did not return after cancellation")
	}
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 50, result.Failed)
	assert.Equal(t, Progress{50, 50}, progress.updates[len(progress.updates)-1])
}

func TestIsThrottled(t *testing.T) {
	assert.True(t, IsThrottled(errThrottled))
	assert.True(t, IsThrottled(errors.New("status 429")))
	assert.True(t, IsThrottled(errors.New("Rate limit reached for requests")))
	assert.True(t, IsThrottled(errors.New("rate limit: googleapi: Error 403")))
	assert.False(t, IsThrottled(errors.New("Video unavailable")))
	assert.False(t, IsThrottled(nil))
}

func TestOptionsDefaults(t *testing.T) {
	e := New(nil, nil, Options{BatchSize: 10})
	assert.Equal(t, 10, e.opts.BatchSize)
	assert.Equal(t, 50, e.opts.Concurrency)
	assert.Equal(t, 5000, e.opts.ListLimit)
	assert.Equal(t, 20, e.opts.RefreshWave)
	assert.Equal(t, retry.Policy{Attempts: 3, BaseDelay: 2 * time.Second}, e.opts.ListPolicy)
	assert.Equal(t, retry.Policy{Attempts: 2, BaseDelay: time.Second}, e.opts.BatchPolicy)
}

func TestChunkAndDiff(t *testing.T) {
	assert.Nil(t, chunk(nil, 5))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunk([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"b", "d"}, diff([]string{"a", "b", "c", "d"}, set("a", "c")))
}
