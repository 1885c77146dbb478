package relationaldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type flakyDB struct {
	failures int
	cause    error
	opens    int
	closed   bool
}

func (f *flakyDB) Open(context.Context) error {
	f.opens++
	if f.opens <= f.failures {
		return f.cause
	}
	return nil
}

func (f *flakyDB) Close(context.Context) error { f.closed = true; return nil }
func (f *flakyDB) Ping(context.Context) error  { return nil }
func (f *flakyDB) Receipts() ReceiptRepository { return nil }

func testConfig() *Config {
	c := NewConfig()
	c.MaxRetries = 2
	c.RetryDelay = time.Millisecond
	return c
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("RetriesConnectionErrors", func(t *testing.T) {
		db := &flakyDB{failures: 2, cause: NewConnectionError("open", "refused", errors.New("connection refused"))}
		m := NewManager(db, testConfig(), WithLogger(zaptest.NewLogger(t)))

		require.NoError(t, m.Open(ctx))
		assert.Equal(t, 3, db.opens)
		assert.True(t, m.IsConnected())
		require.NoError(t, m.HealthCheck(ctx))

		require.NoError(t, m.Close(ctx))
		assert.True(t, db.closed)
		assert.ErrorIs(t, m.HealthCheck(ctx), ErrDatabaseClosed)
	})

	t.Run("GivesUp", func(t *testing.T) {
		db := &flakyDB{failures: 10, cause: NewConnectionError("open", "refused", errors.New("connection refused"))}
		m := NewManager(db, testConfig())

		err := m.Open(ctx)
		require.Error(t, err)
		assert.True(t, IsConnectionError(err))
		assert.ErrorIs(t, err, ErrConnectionFailed)
		assert.Equal(t, 3, db.opens)
		assert.Equal(t, err, m.LastError())
	})

	t.Run("SchemaErrorsAreNotRetried", func(t *testing.T) {
		db := &flakyDB{failures: 1, cause: NewSchemaError("open", "bad schema", errors.New("syntax error"))}
		m := NewManager(db, testConfig())

		err := m.Open(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConnectionFailed)
		assert.Equal(t, 1, db.opens)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("database is locked")))
	assert.True(t, IsRetryable(NewQueryError("q", "m", errors.New("statement Timeout"))))
	assert.False(t, IsRetryable(NewQueryError("q", "m", errors.New("syntax error"))))
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsQueryError(NewQueryError("q", "m", nil)))
}
