package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"conferencecentral/internal/domain"
)

// MaxTaskAttempts is how many times a task is handed out before it is
// parked as failed.
const MaxTaskAttempts = 5

type taskQueue struct {
	DB DBTX
}

// NewTaskQueue returns a producer that writes to the tasks table. Bound to a
// transaction, enqueued tasks become visible only on commit.
func NewTaskQueue(db DBTX) domain.TaskQueue {
	return &taskQueue{DB: db}
}

func (q *taskQueue) Enqueue(ctx context.Context, name string, params map[string]string) error {
	if params == nil {
		params = map[string]string{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode task params: %w", err)
	}
	if _, err := q.DB.ExecContext(ctx, `INSERT INTO tasks (name, params) VALUES ($1, $2)`, name, raw); err != nil {
		return fmt.Errorf("enqueue %s: %w", name, err)
	}
	return nil
}

// TaskStore is the consumer side of the tasks table.
type TaskStore struct {
	store *Store
}

var _ domain.TaskStore = (*TaskStore)(nil)

// NewTaskStore returns a TaskStore sharing the Store's connection pool.
func NewTaskStore(s *Store) *TaskStore {
	return &TaskStore{store: s}
}

// Claim implements domain.TaskStore. Rows are locked with SKIP LOCKED so
// concurrent workers never receive the same task.
func (ts *TaskStore) Claim(ctx context.Context, limit int, handle func(context.Context, *domain.Task) error) (int, error) {
	if limit < 1 {
		limit = 1
	}
	var n int
	err := ts.store.withTx(ctx, nil, func(ctx context.Context, tx *sql.Tx) error {
		n = 0
		tasks, err := lockPending(ctx, tx, limit)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			herr := handle(ctx, t)
			if herr == nil {
				_, err = tx.ExecContext(ctx,
					`UPDATE tasks SET status = 'done', attempts = attempts + 1, updated_at = NOW() WHERE id = $1`, t.ID)
			} else {
				status := "pending"
				if t.Attempts+1 >= MaxTaskAttempts {
					status = "failed"
				}
				ts.store.log.WarnContext(ctx, "task failed", "task", t.Name, "id", t.ID, "attempt", t.Attempts+1, "err", herr)
				_, err = tx.ExecContext(ctx,
					`UPDATE tasks SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = NOW() WHERE id = $1`,
					t.ID, status, herr.Error())
			}
			if err != nil {
				return fmt.Errorf("update task %d: %w", t.ID, err)
			}
			n++
		}
		return nil
	})
	return n, err
}

func lockPending(ctx context.Context, tx *sql.Tx, limit int) ([]*domain.Task, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, params, attempts, created_at
		FROM tasks
		WHERE status = 'pending'
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim tasks: %w", err)
	}
	defer rows.Close()
	var tasks []*domain.Task
	for rows.Next() {
		t := &domain.Task{}
		var raw []byte
		if err := rows.Scan(&t.ID, &t.Name, &raw, &t.Attempts, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &t.Params); err != nil {
			return nil, fmt.Errorf("decode params of task %d: %w", t.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
