package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceConverter lets slice arguments (used with ANY($1)) reach the mock.
// The pgx stdlib driver encodes them natively in production.
type sliceConverter struct{}

func (sliceConverter) ConvertValue(v any) (driver.Value, error) {
	if _, ok := v.([]string); ok {
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(sliceConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestTxManager_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE meetings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			_, err := q(ctx, db).ExecContext(ctx, "UPDATE meetings SET title = 'x'")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("boom")
		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			return sentinel
		})

		assert.ErrorIs(t, err, sentinel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call reuses the open transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			return tm.WithinTx(ctx, func(ctx context.Context) error {
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure surfaces", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		mock.ExpectBegin().WillReturnError(errors.New("no connection"))

		err := tm.WithinTx(ctx, func(ctx context.Context) error { return nil })

		assert.ErrorContains(t, err, "no connection")
	})
}
