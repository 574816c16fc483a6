package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"feeding-tube/internal/models"
)

type subscriptionRow struct {
	ID      string         `db:"id"`
	Name    string         `db:"name"`
	URL     string         `db:"url"`
	AddedAt sql.NullString `db:"added_at"`
}

func (r subscriptionRow) model() models.Subscription {
	sub := models.Subscription{ID: r.ID, Name: r.Name, URL: r.URL}
	if r.AddedAt.Valid {
		sub.AddedAt = models.ParseTimestamp(r.AddedAt.String)
	}
	return sub
}

// AddSubscription inserts sub. It returns ErrConflict if a subscription with
// the same id or the same url already exists.
func (s *Store) AddSubscription(ctx context.Context, sub models.Subscription) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var one int
		err := tx.GetContext(ctx, &one, "SELECT 1 FROM subscriptions WHERE id = ? OR url = ? LIMIT 1", sub.ID, sub.URL)
		if err == nil {
			return fmt.Errorf("subscription %s: %w", sub.ID, ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check subscription: %w", err)
		}

		_, err = tx.ExecContext(ctx, "INSERT INTO subscriptions (id, name, url) VALUES (?, ?, ?)", sub.ID, sub.Name, sub.URL)
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		return nil
	})
}

// RemoveSubscription deletes the subscription with the given id. Stored videos are kept.
func (s *Store) RemoveSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("subscription %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListSubscriptions returns every subscription ordered by name, ignoring case.
func (s *Store) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var rows []subscriptionRow
	err := s.db.SelectContext(ctx, &rows, "SELECT id, name, url, added_at FROM subscriptions ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	subs := make([]models.Subscription, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.model())
	}
	return subs, nil
}

func (s *Store) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var row subscriptionRow
	err := s.db.GetContext(ctx, &row, "SELECT id, name, url, added_at FROM subscriptions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	sub := row.model()
	return &sub, nil
}
