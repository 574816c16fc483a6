package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceFetchRawFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("channel_id") == "UCmissing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "<feed><entry><yt:videoId>%s-vid</yt:videoId><title>t</title></entry></feed>", r.URL.Query().Get("channel_id"))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, 5*time.Second)

	body, err := src.FetchRawFeed(context.Background(), "UCabc")
	require.NoError(t, err)
	videos := Parse(body, "UCabc", "abc")
	require.Len(t, videos, 1)
	assert.Equal(t, "UCabc-vid", videos[0].ID)

	_, err = src.FetchRawFeed(context.Background(), "UCmissing")
	assert.Error(t, err)
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTPSource(server.URL, 0).FetchRawFeed(ctx, "UCslow")
	assert.Error(t, err)
}

func TestFeedURL(t *testing.T) {
	src := NewHTTPSource("", time.Second)
	assert.Equal(t, "https://www.youtube.com/feeds/videos.xml?channel_id=UC%2Bx", src.FeedURL("UC+x"))
}
