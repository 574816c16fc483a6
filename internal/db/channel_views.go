package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"feeding-tube/internal/models"
)

const replaceChannelViewQuery = "INSERT OR REPLACE INTO channel_views (channel_id, last_viewed_at) VALUES (?, ?)"

// UpdateChannelLastViewed sets the channel's last-viewed time to now.
func (s *Store) UpdateChannelLastViewed(ctx context.Context, channelID string) error {
	now := models.FormatTimestamp(s.now())
	if _, err := s.db.ExecContext(ctx, replaceChannelViewQuery, channelID, now); err != nil {
		return fmt.Errorf("update channel last viewed: %w", err)
	}
	return nil
}

// MarkAllChannelsViewed sets the last-viewed time of every given channel to now.
func (s *Store) MarkAllChannelsViewed(ctx context.Context, channelIDs []string) error {
	if len(channelIDs) == 0 {
		return nil
	}
	now := models.FormatTimestamp(s.now())
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range channelIDs {
			if _, err := tx.ExecContext(ctx, replaceChannelViewQuery, id, now); err != nil {
				return fmt.Errorf("mark channel %s viewed: %w", id, err)
			}
		}
		return nil
	})
}

// ChannelLastViewed returns nil if the channel has never been viewed.
func (s *Store) ChannelLastViewed(ctx context.Context, channelID string) (*time.Time, error) {
	var ts string
	err := s.db.GetContext(ctx, &ts, "SELECT last_viewed_at FROM channel_views WHERE channel_id = ?", channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("channel last viewed: %w", err)
	}
	return models.ParseTimestamp(ts), nil
}
