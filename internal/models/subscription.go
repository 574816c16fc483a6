package models

import "time"

// Subscription represents a followed YouTube channel.
type Subscription struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	URL     string     `json:"url"`
	AddedAt *time.Time `json:"addedAt,omitempty"`
}

// ChannelStats is the per-channel aggregate returned by the store.
type ChannelStats struct {
	VideoCount int        `json:"videoCount"`
	LatestDate *time.Time `json:"latestDate,omitempty"`
}
