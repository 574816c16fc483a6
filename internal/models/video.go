package models

import (
	"strings"
	"time"
)

// ShortMaxDuration is the longest a video can run and still be classified as a short.
const ShortMaxDuration = 60

type Video struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	URL             string     `json:"url"`
	IsShort         bool       `json:"isShort"`
	ChannelName     *string    `json:"channelName,omitempty"`
	ChannelID       *string    `json:"channelId,omitempty"`
	PublishedDate   *time.Time `json:"publishedDate,omitempty"`
	StoredAt        *time.Time `json:"storedAt,omitempty"`
	DurationSeconds *int64     `json:"durationSeconds,omitempty"`
	ViewCount       *uint64    `json:"viewCount,omitempty"`
}

// VideoMetadata is what the metadata provider reports for a single video.
// Published time arrives either as a unix Timestamp or an 8-digit UploadDate.
type VideoMetadata struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"webpage_url"`
	Timestamp   *int64  `json:"timestamp"`
	UploadDate  string  `json:"upload_date"`
	Duration    *int64  `json:"duration"`
	ViewCount   *uint64 `json:"view_count"`
	ChannelID   string  `json:"channel_id"`
	ChannelName string  `json:"channel"`
}

// PaginatedVideos is one page of stored videos.
type PaginatedVideos struct {
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Videos   []Video `json:"videos"`
}

// WatchURL returns the canonical watch page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// IsShortURL reports whether url points at the shorts player.
func IsShortURL(url string) bool {
	return strings.Contains(url, "/shorts/")
}

// ToVideo converts provider metadata into a storable video for the given channel.
func (m VideoMetadata) ToVideo(channelID, channelName string) Video {
	url := m.URL
	if url == "" {
		url = WatchURL(m.ID)
	}

	var published *time.Time
	if m.Timestamp != nil && *m.Timestamp > 0 {
		t := time.Unix(*m.Timestamp, 0).UTC()
		published = &t
	} else {
		published = ParseUploadDate(m.UploadDate)
	}

	isShort := IsShortURL(url)
	if m.Duration != nil && *m.Duration <= ShortMaxDuration {
		isShort = true
	}

	return Video{
		ID:              m.ID,
		Title:           m.Title,
		URL:             url,
		IsShort:         isShort,
		ChannelName:     &channelName,
		ChannelID:       &channelID,
		PublishedDate:   published,
		DurationSeconds: m.Duration,
		ViewCount:       m.ViewCount,
	}
}
