package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"rfc3339", "2024-01-15T10:30:00Z"},
		{"rfc3339 with offset", "2024-01-15T12:30:00+02:00"},
		{"fractional zulu", "2024-01-15T10:30:00.000Z"},
		{"sqlite current_timestamp", "2024-01-15 10:30:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.input)
			require.NotNil(t, got)
			assert.True(t, want.Equal(*got), "got %v", got)
		})
	}

	assert.Nil(t, ParseTimestamp(""))
	assert.Nil(t, ParseTimestamp("yesterday"))
}

func TestParseUploadDate(t *testing.T) {
	got := ParseUploadDate("20240115")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *got)

	assert.Nil(t, ParseUploadDate("2024"))
	assert.Nil(t, ParseUploadDate("202401151"))
	assert.Nil(t, ParseUploadDate("20241301"))
	assert.Nil(t, ParseUploadDate("20240132"))
	assert.Nil(t, ParseUploadDate("abcdefgh"))
}

func TestFormatTimestampIsComparableAsText(t *testing.T) {
	earlier := FormatTimestamp(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	later := FormatTimestamp(time.Date(2024, 1, 15, 10, 0, 0, 0, time.FixedZone("CET", 3600)).Add(time.Hour))
	assert.Less(t, earlier, later)
	assert.Equal(t, "2024-01-15T09:00:00Z", earlier)
}

func TestFormatDuration(t *testing.T) {
	d := func(v int64) *int64 { return &v }

	assert.Equal(t, "--:--", FormatDuration(nil))
	assert.Equal(t, "--:--", FormatDuration(d(0)))
	assert.Equal(t, "0:45", FormatDuration(d(45)))
	assert.Equal(t, "2:05", FormatDuration(d(125)))
	assert.Equal(t, "1:00", FormatDuration(d(60)))
	assert.Equal(t, "1:01:01", FormatDuration(d(3661)))
	assert.Equal(t, "2:00:00", FormatDuration(d(7200)))
}

func TestFormatViews(t *testing.T) {
	v := func(n uint64) *uint64 { return &n }

	assert.Equal(t, "", FormatViews(nil))
	assert.Equal(t, "0", FormatViews(v(0)))
	assert.Equal(t, "999", FormatViews(v(999)))
	assert.Equal(t, "1K", FormatViews(v(1_000)))
	assert.Equal(t, "1K", FormatViews(v(1_500)))
	assert.Equal(t, "1.0M", FormatViews(v(1_000_000)))
	assert.Equal(t, "2.5M", FormatViews(v(2_500_000)))
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "1m ago"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{24 * time.Hour, "1d ago"},
		{5 * 24 * time.Hour, "5d ago"},
		{14 * 24 * time.Hour, "2w ago"},
		{60 * 24 * time.Hour, "2mo ago"},
		{400 * 24 * time.Hour, "1y ago"},
		{-time.Hour, "upcoming"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDate(now.Add(-tt.ago), now), "ago=%v", tt.ago)
	}
}

func TestVideoMetadataToVideo(t *testing.T) {
	ts := int64(1705314600) // 2024-01-15T10:30:00Z
	dur := int64(45)
	views := uint64(1200)

	m := VideoMetadata{ID: "abc123def45", Title: "Clip", Timestamp: &ts, UploadDate: "20200101", Duration: &dur, ViewCount: &views}
	v := m.ToVideo("UC1", "Channel One")

	assert.Equal(t, "https://www.youtube.com/watch?v=abc123def45", v.URL)
	assert.True(t, v.IsShort, "45s video should be classified as short")
	require.NotNil(t, v.PublishedDate)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), *v.PublishedDate)
	assert.Equal(t, "UC1", *v.ChannelID)
	assert.Equal(t, "Channel One", *v.ChannelName)
	assert.Equal(t, &views, v.ViewCount)

	long := int64(600)
	m = VideoMetadata{ID: "x", Title: "Long", UploadDate: "20240115", Duration: &long}
	v = m.ToVideo("UC1", "Channel One")
	assert.False(t, v.IsShort)
	require.NotNil(t, v.PublishedDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *v.PublishedDate)

	m = VideoMetadata{ID: "y", Title: "Short", URL: "https://www.youtube.com/shorts/y"}
	v = m.ToVideo("UC1", "Channel One")
	assert.True(t, v.IsShort)
	assert.Nil(t, v.PublishedDate)
}
