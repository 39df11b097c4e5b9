package domain

import (
	"context"
	"time"
)

// Task names handled by the async dispatcher.
const (
	TaskSendConfirmationEmail = "send_confirmation_email"
)

// Task is a named unit of async work with string parameters.
type Task struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Params    map[string]string `json:"params"`
	Attempts  int               `json:"attempts"`
	CreatedAt time.Time         `json:"created_at"`
}

// TaskQueue enqueues tasks. Enqueue inside a transaction makes delivery
// conditional on commit.
type TaskQueue interface {
	Enqueue(ctx context.Context, name string, params map[string]string) error
}

// TaskStore is the consumer side of the task queue.
type TaskStore interface {
	// Claim locks up to limit pending tasks and passes each to handle within
	// one transaction; tasks whose handler succeeds are marked done, the
	// others are released with their attempt count and error recorded.
	Claim(ctx context.Context, limit int, handle func(ctx context.Context, t *Task) error) (int, error)
}

// TaskHandler executes tasks of one name.
type TaskHandler interface {
	Handle(ctx context.Context, t *Task) error
}
