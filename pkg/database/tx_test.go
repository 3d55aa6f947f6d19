package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		err := WithTx(ctx, b, func(ctx context.Context, tx DBTX) error { return nil })

		require.NoError(t, err)
		assert.True(t, b.tx.committed)
		assert.False(t, b.tx.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		boom := errors.New("insert failed")
		err := WithTx(ctx, b, func(ctx context.Context, tx DBTX) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.False(t, b.tx.committed)
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("rolls back and rethrows on panic", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		assert.Panics(t, func() {
			_ = WithTx(ctx, b, func(ctx context.Context, tx DBTX) error { panic("boom") })
		})
		assert.True(t, b.tx.rolledBack)
		assert.False(t, b.tx.committed)
	})

	t.Run("returns commit error", func(t *testing.T) {
		commitErr := errors.New("commit failed")
		b := &fakeBeginner{tx: &fakeTx{commitErr: commitErr}}
		err := WithTx(ctx, b, func(ctx context.Context, tx DBTX) error { return nil })

		assert.ErrorIs(t, err, commitErr)
	})

	t.Run("begin failure skips fn", func(t *testing.T) {
		b := &fakeBeginner{beginErr: errors.New("pool closed")}
		called := false
		err := WithTx(ctx, b, func(ctx context.Context, tx DBTX) error {
			called = true
			return nil
		})

		assert.Error(t, err)
		assert.False(t, called)
	})
}
