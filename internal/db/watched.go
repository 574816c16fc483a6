package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// MarkWatched records id as watched. Marking twice is a no-op.
func (s *Store) MarkWatched(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO watched (video_id) VALUES (?) ON CONFLICT(video_id) DO NOTHING", id)
	if err != nil {
		return fmt.Errorf("mark watched: %w", err)
	}
	return nil
}

func (s *Store) UnmarkWatched(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM watched WHERE video_id = ?", id)
	if err != nil {
		return fmt.Errorf("unmark watched: %w", err)
	}
	return nil
}

// ToggleWatched flips the watched mark for id and returns the new state.
func (s *Store) ToggleWatched(ctx context.Context, id string) (bool, error) {
	watched := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM watched WHERE video_id = ?", id)
		if err != nil {
			return fmt.Errorf("toggle watched: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n > 0 {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO watched (video_id) VALUES (?)", id); err != nil {
			return fmt.Errorf("toggle watched: %w", err)
		}
		watched = true
		return nil
	})
	return watched, err
}

// MarkManyWatched marks every id watched and returns how many marks were new.
func (s *Store) MarkManyWatched(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	count := 0
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, "INSERT OR IGNORE INTO watched (video_id) VALUES (?)")
		if err != nil {
			return fmt.Errorf("prepare mark watched: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			res, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return fmt.Errorf("mark watched %s: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
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

func (s *Store) IsWatched(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM watched WHERE video_id = ?", id); err != nil {
		return false, fmt.Errorf("is watched: %w", err)
	}
	return n > 0, nil
}

// WatchedIDs returns the full watched set.
func (s *Store) WatchedIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, "SELECT video_id FROM watched"); err != nil {
		return nil, fmt.Errorf("watched ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
