// Package test holds fixtures shared by the worker, handler and command tests.
package test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"feeding-tube/internal/db"
	"feeding-tube/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// MockTaskEnqueuer records every task it is asked to enqueue.
type MockTaskEnqueuer struct {
	mu            sync.Mutex
	EnqueuedTasks []*asynq.Task

	// Err, when set, is returned instead of queueing.
	Err error
}

func (m *MockTaskEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.EnqueuedTasks = append(m.EnqueuedTasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("test-task-%d", len(m.EnqueuedTasks)), Type: task.Type(), Queue: "default"}, nil
}

func (m *MockTaskEnqueuer) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.EnqueuedTasks))
	for _, t := range m.EnqueuedTasks {
		types = append(types, t.Type())
	}
	return types
}

// NewStore opens a fresh SQLite store in a temp dir.
func NewStore(t *testing.T) *db.Store {
	t.Helper()
	s, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "data.db"), db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// NewMockStore wraps a sqlmock connection in a Store.
func NewMockStore(t *testing.T) (*db.Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { mockDb.Close() })
	return db.NewWithDB(sqlx.NewDb(mockDb, "sqlmock")), mock
}

// Subscribe adds a channel named after its id.
func Subscribe(t *testing.T, s *db.Store, id string) models.Subscription {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	sub := models.Subscription{ID: id, Name: "Channel " + id, URL: "https://www.youtube.com/channel/" + id, AddedAt: &now}
	require.NoError(t, s.AddSubscription(context.Background(), sub))
	return sub
}

// Videos builds n videos for channelID, newest first, one day apart.
func Videos(channelID string, n int) []models.Video {
	name := "Channel " + channelID
	videos := make([]models.Video, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-v%02d", channelID, i)
		published := time.Now().UTC().Truncate(time.Second).AddDate(0, 0, -i)
		videos = append(videos, models.Video{
			ID:            id,
			Title:         "Video " + id,
			URL:           models.WatchURL(id),
			ChannelID:     &channelID,
			ChannelName:   &name,
			PublishedDate: &published,
		})
	}
	return videos
}

// FakeProvider lists a fixed set of ids and returns metadata for whatever it is asked.
type FakeProvider struct {
	mu      sync.Mutex
	IDs     []string
	ListErr error
	Fetched [][]string
}

func (f *FakeProvider) ListVideoIDs(ctx context.Context, channelURL string, limit int) ([]string, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.IDs, nil
}

func (f *FakeProvider) FetchMetadata(ctx context.Context, ids []string) ([]models.VideoMetadata, error) {
	f.mu.Lock()
	f.Fetched = append(f.Fetched, append([]string(nil), ids...))
	f.mu.Unlock()

	metas := make([]models.VideoMetadata, 0, len(ids))
	for i, id := range ids {
		ts := time.Now().Add(-time.Duration(i) * time.Hour).Unix()
		dur := int64(600)
		metas = append(metas, models.VideoMetadata{ID: id, Title: "Title " + id, Timestamp: &ts, Duration: &dur})
	}
	return metas, nil
}

// FakeFeeds serves canned feed XML per channel id.
type FakeFeeds struct {
	Feeds map[string]string
}

func (f *FakeFeeds) FetchRawFeed(ctx context.Context, channelID string) (string, error) {
	raw, ok := f.Feeds[channelID]
	if !ok {
		return "", fmt.Errorf("feed %s: status 404", channelID)
	}
	return raw, nil
}

// FeedXML renders a minimal channel feed holding the given video ids.
func FeedXML(ids ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><feed xmlns:yt="http://www.youtube.com/xml/schemas/2015">`)
	for i, id := range ids {
		published := time.Now().UTC().Add(-time.Duration(i) * time.Hour).Format(time.RFC3339)
		fmt.Fprintf(&b, `<entry><yt:videoId>%s</yt:videoId><title>Video %s</title><link rel="alternate" href="https://www.youtube.com/watch?v=%s"/><published>%s</published></entry>`,
			id, id, id, published)
	}
	b.WriteString(`</feed>`)
	return b.String()
}
