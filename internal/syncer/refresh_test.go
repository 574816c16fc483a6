package syncer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feeding-tube/internal/models"
)

func feedFor(channelID string, videoIDs ...string) string {
	raw := "<feed>"
	for _, id := range videoIDs {
		raw += fmt.Sprintf("<entry><yt:videoId>%s</yt:videoId><title>%s title</title><published>2024-01-01T00:00:00+00:00</published></entry>", id, id)
	}
	return raw + "</feed>"
}

func TestRefresh(t *testing.T) {
	feeds := &fakeFeeds{feeds: map[string]string{
		"UC1": feedFor("UC1", "a1", "a2"),
		"UC3": feedFor("UC3", "c1"),
	}}
	channels := []Channel{
		{ID: "UC1", Name: "One"},
		{ID: "UC2", Name: "Missing"},
		{ID: "UC3", Name: "Three"},
	}

	videos := New(nil, feeds, testOptions()).Refresh(context.Background(), channels)
	require.Len(t, videos, 3)
	assert.Equal(t, "a1", videos[0].ID)
	assert.Equal(t, "One", *videos[0].ChannelName)
	assert.Equal(t, "c1", videos[2].ID)
	assert.Equal(t, "UC3", *videos[2].ChannelID)
}

func TestRefreshRunsInWaves(t *testing.T) {
	feeds := &fakeFeeds{feeds: map[string]string{}, delay: 5 * time.Millisecond}
	var channels []Channel
	for i := 0; i < 45; i++ {
		id := fmt.Sprintf("UC%02d", i)
		feeds.feeds[id] = feedFor(id, "v"+id)
		channels = append(channels, Channel{ID: id, Name: id})
	}
	opts := testOptions()
	opts.RefreshWave = 20

	videos := New(nil, feeds, opts).Refresh(context.Background(), channels)
	assert.Len(t, videos, 45)
	assert.LessOrEqual(t, feeds.maxInFlight, 20)
	assert.Greater(t, feeds.maxInFlight, 1)
}

func TestRefreshNoChannels(t *testing.T) {
	assert.Empty(t, New(nil, &fakeFeeds{}, testOptions()).Refresh(context.Background(), nil))
}

type fakeStore struct {
	subs     []models.Subscription
	enriched map[string]struct{}
	upserted []models.Video
}

func (s *fakeStore) ListSubscriptions(context.Context) ([]models.Subscription, error) {
	return s.subs, nil
}

func (s *fakeStore) EnrichedVideoIDs(context.Context, string) (map[string]struct{}, error) {
	return s.enriched, nil
}

func (s *fakeStore) UpsertVideos(_ context.Context, videos []models.Video) (int, error) {
	s.upserted = append(s.upserted, videos...)
	return len(videos), nil
}

func TestPrimeAndStore(t *testing.T) {
	store := &fakeStore{enriched: set("v00", "v01")}
	provider := &fakeProvider{listed: ids("v", 5)}

	result, err := New(provider, nil, testOptions()).PrimeAndStore(context.Background(), store, testChannel, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	assert.Len(t, store.upserted, 3)
	assert.ElementsMatch(t, []string{"v02", "v03", "v04"}, provider.fetchedIDs())
}

func TestRefreshAndStore(t *testing.T) {
	store := &fakeStore{subs: []models.Subscription{{ID: "UC1", Name: "One"}, {ID: "UC2", Name: "Two"}}}
	feeds := &fakeFeeds{feeds: map[string]string{"UC1": feedFor("UC1", "x", "y")}}

	n, err := New(nil, feeds, testOptions()).RefreshAndStore(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.upserted, 2)
}
