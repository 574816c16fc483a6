// Package youtubeapi lists and enriches channel videos through the YouTube
// Data API v3. It is an alternative to shelling out to yt-dlp when an API
// key is configured.
package youtubeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sosodev/duration"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"feeding-tube/internal/models"
)

// maxPageSize is the largest page the playlistItems and videos endpoints serve.
const maxPageSize = 50

var (
	ErrChannelNotFound = errors.New("channel not found")

	channelIDPattern = regexp.MustCompile(`/channel/(UC[\w-]{22})`)
	handlePattern    = regexp.MustCompile(`/(@[\w.\-]+)`)
)

type Client struct {
	service *youtube.Service
}

// New creates a client authenticated with apiKey. Extra options are passed
// to the underlying service, e.g. a test endpoint.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{service: service}, nil
}

// ListVideoIDs walks the channel's uploads playlist, newest first, up to limit ids.
func (c *Client) ListVideoIDs(ctx context.Context, channelURL string, limit int) ([]string, error) {
	playlistID, err := c.uploadsPlaylist(ctx, channelURL)
	if err != nil {
		return nil, err
	}

	var ids []string
	pageToken := ""
	for len(ids) < limit {
		call := c.service.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(maxPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, classify(err)
		}
		for _, item := range resp.Items {
			if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
				ids = append(ids, item.ContentDetails.VideoId)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// FetchMetadata fetches snippet, duration and view count for up to 50 ids per request.
func (c *Client) FetchMetadata(ctx context.Context, ids []string) ([]models.VideoMetadata, error) {
	var result []models.VideoMetadata
	for start := 0; start < len(ids); start += maxPageSize {
		end := min(start+maxPageSize, len(ids))
		resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(ids[start:end]...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, classify(err)
		}
		for _, item := range resp.Items {
			result = append(result, toMetadata(item))
		}
	}
	return result, nil
}

func toMetadata(v *youtube.Video) models.VideoMetadata {
	m := models.VideoMetadata{ID: v.Id, URL: models.WatchURL(v.Id)}
	if v.Snippet != nil {
		m.Title = v.Snippet.Title
		m.ChannelID = v.Snippet.ChannelId
		m.ChannelName = v.Snippet.ChannelTitle
		if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			ts := t.Unix()
			m.Timestamp = &ts
		}
	}
	if v.ContentDetails != nil {
		if d, ok := ParseDuration(v.ContentDetails.Duration); ok {
			m.Duration = &d
		}
	}
	// Hidden counts decode as zero; leave them unknown.
	if v.Statistics != nil && v.Statistics.ViewCount > 0 {
		views := v.Statistics.ViewCount
		m.ViewCount = &views
	}
	return m
}

func (c *Client) uploadsPlaylist(ctx context.Context, channelURL string) (string, error) {
	call := c.service.Channels.List([]string{"contentDetails"}).Context(ctx)
	if m := channelIDPattern.FindStringSubmatch(channelURL); m != nil {
		call = call.Id(m[1])
	} else if m := handlePattern.FindStringSubmatch(channelURL); m != nil {
		call = call.ForHandle(m[1])
	} else {
		return "", fmt.Errorf("cannot resolve channel from %q: %w", channelURL, ErrChannelNotFound)
	}

	resp, err := call.Do()
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil || resp.Items[0].ContentDetails.RelatedPlaylists == nil {
		return "", fmt.Errorf("%s: %w", channelURL, ErrChannelNotFound)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// classify marks quota and throttling responses with the "rate limit"
// marker the sync engine retries on.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("rate limit: %w", err)
	}
	for _, item := range apiErr.Errors {
		if strings.Contains(item.Reason, "RateLimitExceeded") || item.Reason == "rateLimitExceeded" || item.Reason == "quotaExceeded" {
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	return err
}

// ParseDuration converts an ISO 8601 duration such as PT1H2M3S to whole seconds.
func ParseDuration(s string) (int64, bool) {
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, false
	}
	d, err := duration.Parse(s)
	if err != nil || d.Negative {
		return 0, false
	}
	return int64(d.ToTimeDuration() / time.Second), true
}
