// Package worker delivers queued tasks to their handlers and runs periodic
// jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"conferencecentral/internal/backoff"
	"conferencecentral/internal/domain"
)

// ErrNoHandler is returned for tasks whose name has no registered handler.
var ErrNoHandler = errors.New("no handler registered")

// Dispatcher polls a domain.TaskStore and hands every claimed task to the
// handler registered for its name.
type Dispatcher struct {
	store        domain.TaskStore
	logger       *slog.Logger
	batchSize    int
	pollInterval time.Duration
	errBackoff   backoff.Backoff

	mu       sync.RWMutex
	handlers map[string]domain.TaskHandler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBatchSize sets how many tasks are claimed per poll.
func WithBatchSize(n int) Option {
	return func(d *Dispatcher) { d.batchSize = max(n, 1) }
}

// WithPollInterval sets the wait between polls when the queue is empty.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Dispatcher) { d.pollInterval = interval }
}

// WithErrorBackoff sets the delay schedule after failed polls.
func WithErrorBackoff(b backoff.Backoff) Option {
	return func(d *Dispatcher) { d.errBackoff = b }
}

// NewDispatcher creates a Dispatcher reading from store.
func NewDispatcher(store domain.TaskStore, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:        store,
		logger:       logger,
		batchSize:    10,
		pollInterval: 2 * time.Second,
		errBackoff:   backoff.MustNew(100*time.Millisecond, 30*time.Second, 2, .2),
		handlers:     make(map[string]domain.TaskHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds handler to tasks named name, replacing any previous one.
func (d *Dispatcher) Register(name string, handler domain.TaskHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = handler
}

// Run polls until ctx is done. It returns nil on cancellation.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("task dispatcher starting",
		slog.Int("batch_size", d.batchSize),
		slog.Duration("poll_interval", d.pollInterval),
	)
	failures := 0
	for {
		n, err := d.Poll(ctx)
		var wait time.Duration
		switch {
		case ctx.Err() != nil:
			d.logger.Info("task dispatcher stopped")
			return nil
		case err != nil:
			failures++
			wait = d.errBackoff.Duration(failures)
			d.logger.Warn("task poll failed", slog.Int("failures", failures), slog.Duration("retry_in", wait), slog.Any("error", err))
		case n < d.batchSize:
			failures = 0
			wait = d.pollInterval
		default:
			failures = 0
			continue
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			d.logger.Info("task dispatcher stopped")
			return nil
		case <-t.C:
		}
	}
}

// Poll claims and handles one batch and returns how many tasks it saw.
func (d *Dispatcher) Poll(ctx context.Context) (int, error) {
	return d.store.Claim(ctx, d.batchSize, d.handle)
}

func (d *Dispatcher) handle(ctx context.Context, t *domain.Task) (err error) {
	d.mu.RLock()
	h, ok := d.handlers[t.Name]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w for task %q", ErrNoHandler, t.Name)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %q panicked: %v", t.Name, p)
		}
	}()
	return h.Handle(ctx, t)
}
