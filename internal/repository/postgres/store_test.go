package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"conferencecentral/internal/backoff"
	"conferencecentral/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, maxAttempts int) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	b, err := backoff.New(time.Microsecond, time.Microsecond*2, 2, 0, nil)
	require.NoError(t, err)
	return NewStore(db, testLogger(), maxAttempts).WithBackoff(b), mock
}

func TestStore_RunInTx(t *testing.T) {
	ctx := context.Background()
	conflict := &pq.Error{Code: "40001", Message: "could not serialize access"}

	tests := []struct {
		name      string
		attempts  int
		mock      func(mock sqlmock.Sqlmock)
		fnErr     error
		wantRuns  int
		wantErrIs error
	}{
		{
			name:     "commit",
			attempts: 3,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO tasks`).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantRuns: 1,
		},
		{
			name:     "retry after serialization failure",
			attempts: 3,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO tasks`).WillReturnError(conflict)
				mock.ExpectRollback()
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO tasks`).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantRuns: 2,
		},
		{
			name:     "retries exhausted",
			attempts: 2,
			mock: func(mock sqlmock.Sqlmock) {
				for range 2 {
					mock.ExpectBegin()
					mock.ExpectExec(`INSERT INTO tasks`).WillReturnError(&pq.Error{Code: "40P01"})
					mock.ExpectRollback()
				}
			},
			wantRuns:  2,
			wantErrIs: ErrTxRetriesExhausted,
		},
		{
			name:     "non retryable error rolls back once",
			attempts: 3,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO tasks`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantRuns:  1,
			wantErrIs: sql.ErrConnDone,
		},
		{
			name:     "closure error rolls back",
			attempts: 3,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fnErr:     domain.ErrAlreadyRegistered,
			wantRuns:  1,
			wantErrIs: domain.ErrAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newTestStore(t, tt.attempts)
			tt.mock(mock)

			runs := 0
			err := store.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
				runs++
				if tt.fnErr != nil {
					return tt.fnErr
				}
				return repos.Tasks.Enqueue(ctx, domain.TaskSendConfirmationEmail, nil)
			})
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantRuns, runs)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_RunInTxRollsBackOnPanic(t *testing.T) {
	store, mock := newTestStore(t, 1)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = store.RunInTx(context.Background(), func(context.Context, domain.Repositories) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&pq.Error{Code: "40001"}))
	assert.True(t, isRetryable(&pq.Error{Code: "40P01"}))
	assert.False(t, isRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, isRetryable(errors.New("plain")))
}
