package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"feeding-tube/internal/models"
)

const (
	videoColumns = `id, title, url, COALESCE(is_short, 0) AS is_short, channel_name, channel_id,
		published_date, stored_at, duration, view_count`

	// Undated videos sort after every dated one; id breaks ties so pages are stable.
	videoOrder = `ORDER BY published_date IS NULL, published_date DESC, id`

	minPageSize = 1
	maxPageSize = 1000
)

const upsertVideoQuery = `
	INSERT INTO videos (id, title, url, is_short, channel_name, channel_id, published_date, duration, view_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		url = excluded.url,
		is_short = MAX(excluded.is_short, COALESCE(videos.is_short, 0)),
		channel_name = excluded.channel_name,
		channel_id = excluded.channel_id,
		published_date = COALESCE(excluded.published_date, videos.published_date),
		duration = COALESCE(excluded.duration, videos.duration),
		view_count = COALESCE(excluded.view_count, videos.view_count)`

type videoRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	URL           string         `db:"url"`
	IsShort       bool           `db:"is_short"`
	ChannelName   sql.NullString `db:"channel_name"`
	ChannelID     sql.NullString `db:"channel_id"`
	PublishedDate sql.NullString `db:"published_date"`
	StoredAt      sql.NullString `db:"stored_at"`
	Duration      sql.NullInt64  `db:"duration"`
	ViewCount     sql.NullInt64  `db:"view_count"`
}

func (r videoRow) model() models.Video {
	v := models.Video{
		ID:      r.ID,
		Title:   r.Title,
		URL:     r.URL,
		IsShort: r.IsShort,
	}
	if r.ChannelName.Valid {
		v.ChannelName = &r.ChannelName.String
	}
	if r.ChannelID.Valid {
		v.ChannelID = &r.ChannelID.String
	}
	if r.PublishedDate.Valid {
		v.PublishedDate = models.ParseTimestamp(r.PublishedDate.String)
	}
	if r.StoredAt.Valid {
		v.StoredAt = models.ParseTimestamp(r.StoredAt.String)
	}
	if r.Duration.Valid {
		v.DurationSeconds = &r.Duration.Int64
	}
	if r.ViewCount.Valid && r.ViewCount.Int64 >= 0 {
		c := uint64(r.ViewCount.Int64)
		v.ViewCount = &c
	}
	return v
}

func toModels(rows []videoRow) []models.Video {
	videos := make([]models.Video, 0, len(rows))
	for _, r := range rows {
		videos = append(videos, r.model())
	}
	return videos
}

// UpsertVideos inserts or updates each video by id and returns the number of
// rows touched. Title, url and channel fields are overwritten; duration, view
// count and published date keep their stored value when the incoming one is nil.
func (s *Store) UpsertVideos(ctx context.Context, videos []models.Video) (int, error) {
	if len(videos) == 0 {
		return 0, nil
	}

	count := 0
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, upsertVideoQuery)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, v := range videos {
			res, err := stmt.ExecContext(ctx,
				v.ID, v.Title, v.URL, v.IsShort, v.ChannelName, v.ChannelID,
				nullableTime(v), v.DurationSeconds, nullableViews(v.ViewCount))
			if err != nil {
				return fmt.Errorf("upsert video %s: %w", v.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("upsert video %s: %w", v.ID, err)
			}
			count += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func nullableTime(v models.Video) interface{} {
	if v.PublishedDate == nil {
		return nil
	}
	return models.FormatTimestamp(*v.PublishedDate)
}

func nullableViews(c *uint64) interface{} {
	if c == nil {
		return nil
	}
	return int64(*c)
}

// GetVideos returns every stored video for a channel, newest first.
func (s *Store) GetVideos(ctx context.Context, channelID string) ([]models.Video, error) {
	var rows []videoRow
	query := "SELECT " + videoColumns + " FROM videos WHERE channel_id = ? " + videoOrder
	if err := s.db.SelectContext(ctx, &rows, query, channelID); err != nil {
		return nil, fmt.Errorf("get videos: %w", err)
	}
	return toModels(rows), nil
}

// GetVideosPaginated returns one page of videos, newest first. A nil
// channelIDs means every channel; a non-nil empty slice matches nothing.
// pageSize is clamped to [1, 1000] and page is zero-based.
func (s *Store) GetVideosPaginated(ctx context.Context, channelIDs []string, page, pageSize int) (*models.PaginatedVideos, error) {
	pageSize = min(max(pageSize, minPageSize), maxPageSize)
	page = max(page, 0)
	result := &models.PaginatedVideos{Page: page, PageSize: pageSize, Videos: []models.Video{}}

	if channelIDs != nil && len(channelIDs) == 0 {
		return result, nil
	}

	countQuery := "SELECT COUNT(*) FROM videos"
	selectQuery := "SELECT " + videoColumns + " FROM videos " + videoOrder + " LIMIT ? OFFSET ?"
	var countArgs []interface{}
	if channelIDs != nil {
		var err error
		countQuery, countArgs, err = inQuery("SELECT COUNT(*) FROM videos WHERE channel_id IN (?)", channelIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.db.GetContext(ctx, &result.Total, countQuery, countArgs...); err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}

	// Past the end, including offsets too large to compute.
	if page > (math.MaxInt-1)/pageSize || page*pageSize >= result.Total {
		return result, nil
	}
	offset := page * pageSize

	selectArgs := []interface{}{pageSize, offset}
	if channelIDs != nil {
		var err error
		selectQuery, selectArgs, err = inQuery(
			"SELECT "+videoColumns+" FROM videos WHERE channel_id IN (?) "+videoOrder+" LIMIT ? OFFSET ?",
			channelIDs, pageSize, offset)
		if err != nil {
			return nil, err
		}
	}

	var rows []videoRow
	if err := s.db.SelectContext(ctx, &rows, selectQuery, selectArgs...); err != nil {
		return nil, fmt.Errorf("page videos: %w", err)
	}
	result.Videos = toModels(rows)
	return result, nil
}

// EnrichedVideoIDs returns the ids of a channel's videos that already carry a duration.
// Priming skips these.
func (s *Store) EnrichedVideoIDs(ctx context.Context, channelID string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, "SELECT id FROM videos WHERE channel_id = ? AND duration IS NOT NULL", channelID)
	if err != nil {
		return nil, fmt.Errorf("enriched video ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
