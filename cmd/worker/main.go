package main

import (
	"context"
	"log"
	"time"

	"feeding-tube/internal/app"
	"feeding-tube/internal/config"
	"feeding-tube/internal/worker"
	"feeding-tube/pkg/tasks"

	"github.com/hibiken/asynq"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

const (
	retryBaseDelay = 5 * time.Minute
	retryMaxDelay  = 24 * time.Hour
)

// retryDelay backs off 5min, 10min, 20min... capped at a day.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	delay := retryBaseDelay
	for i := 0; i < n && delay < retryMaxDelay; i++ {
		delay *= 2
	}
	delay = min(delay, retryMaxDelay)
	log.Printf("Task %s failed %d times, retrying in %v: %v", task.Type(), n+1, delay, err)
	return delay
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("could not open app: %v", err)
	}
	defer a.Close()

	redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redis)
	defer client.Close()

	srv := asynq.NewServer(redis, asynq.Config{
		// One prime at a time; the engine already fans out its own batches.
		Concurrency: 1,
		Queues: map[string]int{
			"high":    2,
			"default": 1,
		},
		RetryDelayFunc: retryDelay,
	})

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(a.Store, a.Engine, client)

	mux.HandleFunc(tasks.TypeRefreshSubscriptions, taskHandler.HandleRefreshSubscriptionsTask)
	mux.HandleFunc(tasks.TypePrimeSubscriptions, taskHandler.HandlePrimeSubscriptionsTask)
	mux.HandleFunc(tasks.TypePrimeChannel, taskHandler.HandlePrimeChannelTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
