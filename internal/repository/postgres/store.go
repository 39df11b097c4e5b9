package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/backoff"
	"conferencecentral/internal/domain"

	"github.com/lib/pq"
)

// ErrTxRetriesExhausted is returned when a transaction kept conflicting with
// concurrent writers for every allowed attempt.
var ErrTxRetriesExhausted = errors.New("transaction retries exhausted")

var defaultBackoff = backoff.MustNew(10*time.Millisecond, 500*time.Millisecond, 2, .2)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the transactional entity store. Transactions run at SERIALIZABLE
// isolation; serialization failures and deadlocks re-run the whole closure.
type Store struct {
	DB          *sql.DB
	log         *slog.Logger
	maxAttempts int
	backoff     backoff.Backoff
}

var _ domain.Transactor = (*Store)(nil)

// NewStore returns a Store over db. maxAttempts < 1 is treated as 1.
func NewStore(db *sql.DB, logger *slog.Logger, maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Store{DB: db, log: logger, maxAttempts: maxAttempts, backoff: defaultBackoff}
}

// WithBackoff replaces the delay schedule between attempts.
func (s *Store) WithBackoff(b backoff.Backoff) *Store {
	s.backoff = b
	return s
}

// Repositories returns repositories that run outside any transaction.
func (s *Store) Repositories() domain.Repositories {
	return repositories(s.DB)
}

func repositories(q DBTX) domain.Repositories {
	return domain.Repositories{
		Profiles:    NewProfileRepository(q),
		Conferences: NewConferenceRepository(q),
		Sessions:    NewSessionRepository(q),
		Tasks:       NewTaskQueue(q),
	}
}

// RunInTx implements domain.Transactor.
func (s *Store) RunInTx(ctx context.Context, fn func(context.Context, domain.Repositories) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			if serr := s.backoff.Sleep(ctx, attempt-1); serr != nil {
				return serr
			}
		}
		err = s.withTx(ctx, serializable, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, repositories(tx))
		})
		if err == nil || !isRetryable(err) {
			return err
		}
		s.log.WarnContext(ctx, "transaction conflict", "attempt", attempt, "max_attempts", s.maxAttempts, "err", err)
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrTxRetriesExhausted, s.maxAttempts, err)
}

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// withTx starts a transaction and executes fn inside of it.
// If fn returns an error or panics the transaction is rolled back,
// otherwise it is committed.
func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(context.Context, *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rb := tx.Rollback(); rb != nil {
				s.log.Error("rollback after panic failure", "panic", p, "err", rb)
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rb := tx.Rollback(); rb != nil {
			return fmt.Errorf("rolling back transaction: %v (original: %w)", rb, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// isRetryable reports serialization failures and deadlocks.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
