package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"feeding-tube/internal/models"
)

// entry is one line of yt-dlp --dump-json output.
type entry struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	WebpageURL       string   `json:"webpage_url"`
	URL              string   `json:"url"`
	Timestamp        *int64   `json:"timestamp"`
	ReleaseTimestamp *int64   `json:"release_timestamp"`
	UploadDate       string   `json:"upload_date"`
	Duration         *float64 `json:"duration"`
	ViewCount        *uint64  `json:"view_count"`
	ChannelID        string   `json:"channel_id"`
	Channel          string   `json:"channel"`
	Uploader         string   `json:"uploader"`
	ChannelURL       string   `json:"channel_url"`
}

func (e entry) channelName() string {
	if e.Channel != "" {
		return e.Channel
	}
	return e.Uploader
}

func (e entry) metadata() models.VideoMetadata {
	m := models.VideoMetadata{
		ID:          e.ID,
		Title:       e.Title,
		URL:         e.WebpageURL,
		Timestamp:   e.Timestamp,
		UploadDate:  e.UploadDate,
		ViewCount:   e.ViewCount,
		ChannelID:   e.ChannelID,
		ChannelName: e.channelName(),
	}
	if m.URL == "" {
		m.URL = models.WatchURL(e.ID)
	}
	if e.Duration != nil {
		d := int64(*e.Duration)
		m.Duration = &d
	}
	return m
}

func parseEntries(out []byte) []entry {
	var entries []entry
	for _, line := range lines(out) {
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			log.Printf("Skipping unparseable yt-dlp line: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// ListVideoIDs returns the ids on a channel's uploads tab, newest first, up to limit.
func (p *Provider) ListVideoIDs(ctx context.Context, channelURL string, limit int) ([]string, error) {
	out, err := p.run(ctx,
		"--flat-playlist",
		"--print", "%(id)s",
		"--no-warnings",
		"--extractor-args", skipManifests,
		"--playlist-end", strconv.Itoa(limit),
		videosTabURL(channelURL),
	)
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// FetchMetadata fetches full metadata for a batch of videos in one invocation.
func (p *Provider) FetchMetadata(ctx context.Context, ids []string) ([]models.VideoMetadata, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := []string{
		"--dump-json",
		"--no-warnings",
		"--extractor-args", skipManifests,
		"--socket-timeout", "30",
	}
	for _, id := range ids {
		args = append(args, models.WatchURL(id))
	}

	out, err := p.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	entries := parseEntries(out)
	result := make([]models.VideoMetadata, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		result = append(result, e.metadata())
	}
	return result, nil
}

// ChannelInfo resolves a channel or video URL to the channel's id, name and url.
func (p *Provider) ChannelInfo(ctx context.Context, url string) (*models.Subscription, error) {
	url = strings.TrimSpace(url)
	if !IsValidURL(url) {
		return nil, fmt.Errorf("%q: %w", url, ErrInvalidURL)
	}

	out, err := p.run(ctx, "--dump-json", "--playlist-items", "1", "--no-warnings", url)
	if err != nil {
		return nil, err
	}
	entries := parseEntries(out)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no channel data for %s", url)
	}

	e := entries[0]
	if e.ChannelID == "" {
		return nil, fmt.Errorf("no channel_id found for %s", url)
	}
	name := e.channelName()
	if name == "" {
		return nil, fmt.Errorf("no channel name found for %s", url)
	}

	link := e.ChannelURL
	if link == "" {
		if strings.Contains(url, "/watch?") || strings.Contains(url, "youtu.be/") {
			link = "https://www.youtube.com/channel/" + e.ChannelID
		} else {
			link = url
		}
	}
	return &models.Subscription{ID: e.ChannelID, Name: name, URL: link}, nil
}

// Search runs a YouTube search. limit is clamped to [1, 50].
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]models.Video, error) {
	q := SanitizeQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	limit = min(max(limit, 1), 50)

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	out, err := p.run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, q), "--flat-playlist", "--dump-json", "--no-warnings")
	if err != nil {
		return nil, err
	}

	var videos []models.Video
	for _, e := range parseEntries(out) {
		m := e.metadata()
		if e.WebpageURL == "" && e.URL != "" {
			m.URL = e.URL
		}
		if e.ReleaseTimestamp != nil {
			m.Timestamp = e.ReleaseTimestamp
		}
		name := e.channelName()
		if name == "" {
			name = "Unknown"
		}
		v := m.ToVideo(e.ChannelID, name)
		if e.ChannelID == "" {
			v.ChannelID = nil
		}
		videos = append(videos, v)
	}
	return videos, nil
}

type VideoDescription struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ChannelName string `json:"channelName"`
}

// Description fetches a single video's title, description and channel name.
func (p *Provider) Description(ctx context.Context, videoID string) (*VideoDescription, error) {
	if !IsValidVideoID(videoID) {
		return nil, fmt.Errorf("%q: %w", videoID, ErrInvalidVideoID)
	}

	ctx, cancel := context.WithTimeout(ctx, descriptionTimeout)
	defer cancel()

	out, err := p.run(ctx, "--dump-json", "--no-warnings", "--extractor-args", skipManifests, models.WatchURL(videoID))
	if err != nil {
		return nil, err
	}
	entries := parseEntries(out)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no metadata for %s", videoID)
	}

	e := entries[0]
	d := &VideoDescription{Title: e.Title, Description: "No description available.", ChannelName: e.channelName()}
	if e.Description != nil {
		d.Description = *e.Description
	}
	if d.ChannelName == "" {
		d.ChannelName = "Unknown"
	}
	return d, nil
}
