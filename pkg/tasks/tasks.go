package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// A list of task types.
const (
	TypeRefreshSubscriptions = "subscriptions:refresh"
	TypePrimeSubscriptions   = "subscriptions:prime"
	TypePrimeChannel         = "channel:prime"
)

// PrimeUniqueTTL keeps a second prime of the same channel from being queued
// while one is pending.
const PrimeUniqueTTL = time.Hour

type PrimeChannelTaskPayload struct {
	ChannelID string `json:"channel_id"`
}

func NewRefreshSubscriptionsTask() *asynq.Task {
	return asynq.NewTask(TypeRefreshSubscriptions, nil)
}

func NewPrimeSubscriptionsTask() *asynq.Task {
	return asynq.NewTask(TypePrimeSubscriptions, nil)
}

func NewPrimeChannelTask(channelID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PrimeChannelTaskPayload{ChannelID: channelID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePrimeChannel, payload), nil
}

// PrimeChannelOptions are the enqueue options every channel:prime task uses.
func PrimeChannelOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Unique(PrimeUniqueTTL),
	}
}
