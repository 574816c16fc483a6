package db

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"feeding-tube/internal/models"
)

// Legacy JSON layout written by the old flat-file version.
const (
	legacySubscriptionsFile = "subscriptions.json"
	legacyWatchedFile       = "watched.json"
	legacyVideosFile        = "videos.json"
)

type legacyConfig struct {
	Subscriptions []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"subscriptions"`
	Settings          map[string]json.RawMessage `json:"settings"`
	ChannelLastViewed map[string]string          `json:"channelLastViewed"`
}

type legacyWatched struct {
	Videos map[string]struct {
		WatchedAt string `json:"watchedAt"`
	} `json:"videos"`
}

type legacyVideos struct {
	Videos map[string]struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		URL           string `json:"url"`
		IsShort       bool   `json:"isShort"`
		ChannelName   string `json:"channelName"`
		ChannelID     string `json:"channelId"`
		PublishedDate string `json:"publishedDate"`
		StoredAt      string `json:"storedAt"`
	} `json:"videos"`
}

// importLegacy copies the old JSON files into the database. It is best-effort:
// missing or malformed files and individual bad rows are skipped. Files that
// were read are moved into a backup directory afterwards.
func (s *Store) importLegacy(ctx context.Context) error {
	dir := s.legacyDir
	var imported []string

	var cfg legacyConfig
	if readLegacy(filepath.Join(dir, legacySubscriptionsFile), &cfg) {
		for _, sub := range cfg.Subscriptions {
			s.execLegacy(ctx, "INSERT OR IGNORE INTO subscriptions (id, name, url) VALUES (?, ?, ?)", sub.ID, sub.Name, sub.URL)
		}
		for key, val := range cfg.Settings {
			s.execLegacy(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, string(val))
		}
		for channelID, ts := range cfg.ChannelLastViewed {
			if t := parseLegacyTime(ts); t != nil {
				s.execLegacy(ctx, replaceChannelViewQuery, channelID, *t)
			}
		}
		imported = append(imported, legacySubscriptionsFile)
	}

	var watched legacyWatched
	if readLegacy(filepath.Join(dir, legacyWatchedFile), &watched) {
		for id, w := range watched.Videos {
			s.execLegacy(ctx, "INSERT OR IGNORE INTO watched (video_id, watched_at) VALUES (?, COALESCE(?, CURRENT_TIMESTAMP))", id, parseLegacyTime(w.WatchedAt))
		}
		imported = append(imported, legacyWatchedFile)
	}

	var videos legacyVideos
	if readLegacy(filepath.Join(dir, legacyVideosFile), &videos) {
		for _, v := range videos.Videos {
			if v.ID == "" {
				continue
			}
			s.execLegacy(ctx, `INSERT OR IGNORE INTO videos
				(id, title, url, is_short, channel_name, channel_id, published_date, stored_at)
				VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, COALESCE(?, CURRENT_TIMESTAMP))`,
				v.ID, v.Title, v.URL, v.IsShort, v.ChannelName, v.ChannelID,
				parseLegacyTime(v.PublishedDate), parseLegacyTime(v.StoredAt))
		}
		imported = append(imported, legacyVideosFile)
	}

	if len(imported) > 0 {
		backupLegacy(dir, imported)
		log.Printf("Imported legacy data from %s: %v", dir, imported)
	}
	return nil
}

func readLegacy(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("Skipping malformed legacy file %s: %v", path, err)
		return false
	}
	return true
}

func (s *Store) execLegacy(ctx context.Context, query string, args ...interface{}) {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Printf("Skipping legacy row: %v", err)
	}
}

// parseLegacyTime normalises a legacy timestamp to the storage format, or nil.
func parseLegacyTime(s string) *string {
	t := models.ParseTimestamp(s)
	if t == nil {
		return nil
	}
	formatted := models.FormatTimestamp(*t)
	return &formatted
}

func backupLegacy(dir string, files []string) {
	backupDir := filepath.Join(dir, "backup")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		log.Printf("Could not create legacy backup dir: %v", err)
		return
	}
	for _, name := range files {
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(backupDir, name)); err != nil {
			log.Printf("Could not move %s to backup: %v", name, err)
		}
	}
}
