package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feeding-tube/internal/app"
	"feeding-tube/internal/config"
	"feeding-tube/internal/handlers"
	"feeding-tube/internal/middleware"
	"feeding-tube/pkg/tasks"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

// Queueing endpoints allow a burst of 3 and then one request every 10s per client.
const (
	queueRate  = rate.Limit(0.1)
	queueBurst = 3
)

func newServer(cfg *config.Config, a *app.App, client tasks.Enqueuer) *http.Server {
	h := handlers.New(a.Store, a.YtDlp, client, cfg.FeedBaseURL)
	router := h.Router(middleware.NewRateLimiterMiddleware(queueRate, queueBurst))
	router.Use(middleware.Logging)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Search and channel lookups shell out to yt-dlp.
		WriteTimeout: 2 * time.Minute,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("could not open app: %v", err)
	}
	defer a.Close()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	srv := newServer(cfg, a, client)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on %s (commit: %s)", srv.Addr, CommitSHA)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
