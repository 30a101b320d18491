// Package distlock serializes work on one key (a contact email) across
// server instances. Redis is preferred; PostgreSQL advisory locks are the
// fallback when Redis is not configured.
package distlock

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking.
// A lock instance belongs to one goroutine; concurrent callers each take
// their own instance from a Locker.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Locker hands out locks for keys under a common prefix.
type Locker struct {
	redis  *redis.Client
	db     *sql.DB
	prefix string
	ttl    time.Duration
}

// NewLocker creates a lock factory. If redisClient is non-nil locks are Redis
// SET NX locks; otherwise they are PostgreSQL advisory locks on db.
func NewLocker(redisClient *redis.Client, db *sql.DB, prefix string, ttl time.Duration) *Locker {
	return &Locker{redis: redisClient, db: db, prefix: prefix, ttl: ttl}
}

// For returns a fresh lock for key.
func (l *Locker) For(key string) DistLock {
	return NewLock(l.redis, l.db, l.prefix+key, l.ttl)
}

// NewLock creates a distributed lock using the best available backend.
func NewLock(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) DistLock {
	if redisClient != nil {
		return NewRedisLock(redisClient, key, ttl)
	}
	return NewPGAdvisoryLock(db, key)
}

// =============================================================================
// PostgreSQL Advisory Lock (no Redis, e.g. cmd/migrate)
// =============================================================================
// Advisory locks are session-scoped, so the lock pins one pooled connection
// from Acquire until Release. A dropped connection releases the lock.

// PGAdvisoryLock implements DistLock using PostgreSQL advisory locks.
type PGAdvisoryLock struct {
	db     *sql.DB
	lockID int64

	mu   sync.Mutex
	conn *sql.Conn
}

// NewPGAdvisoryLock creates a PG advisory lock with a deterministic lock ID
// derived from the given key string.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries pg_try_advisory_lock without blocking.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	if l.db == nil {
		return false, errors.New("distlock: no database configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		return false, errors.New("distlock: lock already held")
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, err
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, err
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release unlocks and returns the pinned connection to the pool.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	closeErr := l.conn.Close()
	l.conn = nil
	if err != nil {
		return err
	}
	return closeErr
}
