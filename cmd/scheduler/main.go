package main

import (
	"log"

	"feeding-tube/internal/config"
	"feeding-tube/pkg/tasks"

	"github.com/hibiken/asynq"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	if _, err := scheduler.Register(cfg.RefreshSchedule, tasks.NewRefreshSubscriptionsTask(), asynq.Queue("high")); err != nil {
		log.Fatalf("could not register task: %v", err)
	}

	log.Printf("Scheduler starting (commit: %s, refresh %s)", CommitSHA, cfg.RefreshSchedule)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}
