package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"feeding-tube/internal/models"
)

// GetSettings loads stored settings over the defaults. Values that fail to
// decode are ignored and keep their default.
func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, value FROM settings"); err != nil {
		return settings, fmt.Errorf("get settings: %w", err)
	}

	for _, r := range rows {
		var target interface{}
		switch r.Key {
		case models.SettingPlayer:
			target = &settings.Player
		case models.SettingVideosPerChannel:
			target = &settings.VideosPerChannel
		case models.SettingHideShorts:
			target = &settings.HideShorts
		default:
			continue
		}
		if err := json.Unmarshal([]byte(r.Value), target); err != nil {
			log.Printf("Ignoring malformed setting %s=%q: %v", r.Key, r.Value, err)
		}
	}
	return settings, nil
}

// SetSetting stores value JSON-encoded under key.
func (s *Store) SetSetting(ctx context.Context, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(encoded))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
