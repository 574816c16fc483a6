package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL serves a channel's recent uploads as an Atom feed.
const DefaultBaseURL = "https://www.youtube.com/feeds/videos.xml"

// maxFeedBytes bounds how much of a response is read. Channel feeds carry
// only the latest few entries and are far below this.
const maxFeedBytes = 4 << 20

// HTTPSource fetches raw channel feeds over HTTP.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// FeedURL returns the feed address for a channel.
func (s *HTTPSource) FeedURL(channelID string) string {
	return s.BaseURL + "?channel_id=" + url.QueryEscape(channelID)
}

// FetchRawFeed returns the feed body for channelID. Any non-2xx status is an error.
func (s *HTTPSource) FetchRawFeed(ctx context.Context, channelID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.FeedURL(channelID), nil)
	if err != nil {
		return "", fmt.Errorf("build feed request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed for %s: %w", channelID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch feed for %s: status %d", channelID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("read feed for %s: %w", channelID, err)
	}
	return string(body), nil
}
