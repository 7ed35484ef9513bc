package repositories

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/database"
)

// enrichmentLockKey is the advisory lock key shared by all enrichment
// runs. Primary sync keys are derived per username.
const enrichmentLockKey int64 = -0x454e5249 // "ENRI"

// SessionLock is a held PostgreSQL advisory lock. Advisory locks are
// session scoped, so the lock pins a dedicated connection until
// Release is called.
type SessionLock struct {
	conn *pgxpool.Conn
	key  int64
}

// PrimarySyncLockKey derives the advisory lock key for a primary sync
// of the given username.
func PrimarySyncLockKey(username string) int64 {
	h := fnv.New64a()
	h.Write([]byte("primary-sync:" + username))
	return int64(h.Sum64())
}

// EnrichmentLockKey returns the advisory lock key for enrichment runs.
func EnrichmentLockKey() int64 {
	return enrichmentLockKey
}

// AdvisoryLocker serializes sync runs through PostgreSQL advisory
// locks.
type AdvisoryLocker interface {
	// Acquire takes the advisory lock for key, or returns
	// apperrors.ErrSyncInProgress when another session holds it.
	// The caller must Release the returned lock.
	Acquire(ctx context.Context, key int64) (*SessionLock, error)
}

type advisoryLocker struct {
	db *database.DB
}

// NewAdvisoryLocker creates an AdvisoryLocker backed by db.
func NewAdvisoryLocker(db *database.DB) AdvisoryLocker {
	return &advisoryLocker{db: db}
}

var _ AdvisoryLocker = (*advisoryLocker)(nil)

func (l *advisoryLocker) Acquire(ctx context.Context, key int64) (*SessionLock, error) {
	conn, err := l.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, apperrors.ErrSyncInProgress
	}

	return &SessionLock{conn: conn, key: key}, nil
}

// Release drops the advisory lock and returns the connection to the
// pool. Safe to call once; the unlock runs on a background context so
// a cancelled run still releases its lock.
func (l *SessionLock) Release() {
	if l.conn == nil {
		return
	}
	_, _ = l.conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, l.key)
	l.conn.Release()
	l.conn = nil
}
