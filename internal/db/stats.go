package db

import (
	"context"
	"database/sql"
	"fmt"

	"feeding-tube/internal/models"
)

// Aggregates only report channels that are still subscribed; videos left
// behind by a removed subscription are ignored rather than reported.

func shortFilter(hideShorts bool) string {
	if hideShorts {
		return "AND COALESCE(v.is_short, 0) = 0"
	}
	return ""
}

// NewVideoCounts returns, per channel, how many dated videos were published
// after the channel was last viewed. Never-viewed channels count every dated video.
func (s *Store) NewVideoCounts(ctx context.Context, hideShorts bool) (map[string]int, error) {
	query := `
		SELECT v.channel_id, COUNT(*) AS cnt
		FROM videos v
		JOIN subscriptions s ON s.id = v.channel_id
		LEFT JOIN channel_views cv ON cv.channel_id = v.channel_id
		WHERE v.published_date IS NOT NULL AND v.channel_id IS NOT NULL ` + shortFilter(hideShorts) + `
			AND (cv.last_viewed_at IS NULL OR v.published_date > cv.last_viewed_at)
		GROUP BY v.channel_id`

	var rows []struct {
		ChannelID string `db:"channel_id"`
		Count     int    `db:"cnt"`
	}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("new video counts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ChannelID] = r.Count
	}
	return counts, nil
}

// ChannelStats returns the video count and newest published date per channel.
func (s *Store) ChannelStats(ctx context.Context, hideShorts bool) (map[string]models.ChannelStats, error) {
	query := `
		SELECT v.channel_id, COUNT(*) AS cnt, MAX(v.published_date) AS latest
		FROM videos v
		JOIN subscriptions s ON s.id = v.channel_id
		WHERE 1 = 1 ` + shortFilter(hideShorts) + `
		GROUP BY v.channel_id`

	var rows []struct {
		ChannelID string         `db:"channel_id"`
		Count     int            `db:"cnt"`
		Latest    sql.NullString `db:"latest"`
	}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("channel stats: %w", err)
	}

	stats := make(map[string]models.ChannelStats, len(rows))
	for _, r := range rows {
		st := models.ChannelStats{VideoCount: r.Count}
		if r.Latest.Valid {
			st.LatestDate = models.ParseTimestamp(r.Latest.String)
		}
		stats[r.ChannelID] = st
	}
	return stats, nil
}

// FullyWatchedChannels returns the channels whose every video is marked watched.
// Channels with no videos are never fully watched.
func (s *Store) FullyWatchedChannels(ctx context.Context, hideShorts bool) (map[string]struct{}, error) {
	query := `
		SELECT v.channel_id
		FROM videos v
		JOIN subscriptions s ON s.id = v.channel_id
		LEFT JOIN watched w ON w.video_id = v.id
		WHERE 1 = 1 ` + shortFilter(hideShorts) + `
		GROUP BY v.channel_id
		HAVING COUNT(*) > 0 AND COUNT(*) = COUNT(w.video_id)`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("fully watched channels: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
