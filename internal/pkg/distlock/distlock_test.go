package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisLock_ExclusiveUntilReleased(t *testing.T) {
	client, _ := newRedis(t)
	ctx := context.Background()
	locker := NewLocker(client, nil, "contact:", time.Minute)

	first := locker.For("jane@example.com")
	second := locker.For("jane@example.com")

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Releasing someone else's lock is a no-op.
	require.NoError(t, second.Release(ctx))
	ok, _ = second.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ExpiresAndExtend(t *testing.T) {
	client, mr := newRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "contact:k@example.com", 5*time.Second)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lock:contact:k@example.com", lock.Key())

	require.NoError(t, lock.Extend(ctx, time.Minute))
	mr.FastForward(30 * time.Second)
	assert.True(t, mr.Exists(lock.Key()))

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(lock.Key()))
	assert.Error(t, lock.Extend(ctx, time.Minute))
}

func TestPGAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	lock := NewPGAdvisoryLock(db, "es:migrate")

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(lock.lockID).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(lock.lockID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lock.Release(ctx))
	require.NoError(t, lock.Release(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewLock_PicksBackend(t *testing.T) {
	client, _ := newRedis(t)
	assert.IsType(t, &RedisLock{}, NewLock(client, nil, "k", time.Second))
	assert.IsType(t, &PGAdvisoryLock{}, NewLock(nil, nil, "k", time.Second))
}
