package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"feeding-tube/internal/db"
	"feeding-tube/internal/models"
	"feeding-tube/internal/syncer"
	"feeding-tube/pkg/tasks"

	"github.com/hibiken/asynq"
)

// Store is what the task handlers read and write.
type Store interface {
	syncer.Store
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
}

type TaskHandler struct {
	store       Store
	engine      *syncer.Engine
	asynqClient tasks.Enqueuer
}

func NewTaskHandler(store Store, engine *syncer.Engine, client tasks.Enqueuer) *TaskHandler {
	return &TaskHandler{store: store, engine: engine, asynqClient: client}
}

func (h *TaskHandler) HandleRefreshSubscriptionsTask(ctx context.Context, t *asynq.Task) error {
	n, err := h.engine.RefreshAndStore(ctx, h.store)
	if err != nil {
		return fmt.Errorf("refresh subscriptions: %w", err)
	}
	log.Printf("Refresh task stored %d videos", n)
	return nil
}

// HandlePrimeSubscriptionsTask fans out one channel:prime task per subscription.
func (h *TaskHandler) HandlePrimeSubscriptionsTask(ctx context.Context, t *asynq.Task) error {
	subs, err := h.store.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	queued := 0
	for _, sub := range subs {
		task, err := tasks.NewPrimeChannelTask(sub.ID)
		if err != nil {
			log.Printf("failed to create prime task for %s: %v", sub.ID, err)
			continue
		}
		if _, err := h.asynqClient.EnqueueContext(ctx, task, tasks.PrimeChannelOptions()...); err != nil {
			if errors.Is(err, asynq.ErrDuplicateTask) {
				log.Printf("Prime task for %s already queued", sub.Name)
				continue
			}
			log.Printf("failed to enqueue prime task for %s: %v", sub.ID, err)
			continue
		}
		queued++
	}
	log.Printf("Queued %d of %d channels for priming", queued, len(subs))
	return nil
}

func (h *TaskHandler) HandlePrimeChannelTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.PrimeChannelTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	sub, err := h.store.GetSubscription(ctx, p.ChannelID)
	if errors.Is(err, db.ErrNotFound) {
		// Unsubscribed after the task was queued.
		return fmt.Errorf("subscription %s: %v: %w", p.ChannelID, err, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}

	log.Printf("Priming channel: %s", sub.Name)
	_, err = h.engine.PrimeAndStore(ctx, h.store, syncer.ChannelFrom(*sub), logProgress(sub.Name))
	return err
}

// logProgress logs at each quarter of the way through a prime.
func logProgress(name string) syncer.ProgressFunc {
	last := -1
	return func(done, total int) {
		if total == 0 {
			return
		}
		quarter := done * 4 / total
		if quarter == last {
			return
		}
		last = quarter
		log.Printf("Priming %s: %d/%d", name, done, total)
	}
}
