// Package app wires the store, providers and sync engine from a Config.
package app

import (
	"context"
	"fmt"
	"log"

	"feeding-tube/internal/config"
	"feeding-tube/internal/db"
	"feeding-tube/internal/feed"
	"feeding-tube/internal/syncer"
	"feeding-tube/internal/youtubeapi"
	"feeding-tube/internal/ytdlp"
)

type App struct {
	Config *config.Config
	Store  *db.Store
	YtDlp  *ytdlp.Provider
	Feeds  *feed.HTTPSource
	Engine *syncer.Engine
}

// Open opens the database and builds the sync engine. Priming goes through
// the Data API when an API key is configured and through yt-dlp otherwise.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.Open(ctx, cfg.DBPath, cfg.DBOptions())
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Store:  store,
		YtDlp:  ytdlp.New(cfg.YtdlpOptions()),
		Feeds:  feed.NewHTTPSource(cfg.FeedBaseURL, cfg.CallTimeout),
	}

	var provider syncer.Provider = a.YtDlp
	if cfg.YouTubeAPIKey != "" {
		client, err := youtubeapi.New(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("youtube api: %w", err)
		}
		provider = client
		log.Println("Priming through the YouTube Data API")
	}

	a.Engine = syncer.New(provider, a.Feeds, cfg.SyncOptions())
	return a, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
