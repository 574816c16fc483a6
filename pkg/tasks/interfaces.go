package tasks

import (
	"context"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client; handlers and tests depend on this
// instead of a live Redis connection.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
