package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// checkoutWarnAfter is how long a connection may stay checked out before
// the watchdog logs it. The watchdog only logs, it never cancels.
const checkoutWarnAfter = 5 * time.Second

// watchedConn composes a pooled connection with a staleness watchdog and
// keeps track of the last statement run on it. Every acquire must be
// paired with Release on all exit paths.
type watchedConn struct {
	inner *pgxpool.Conn
	timer *time.Timer

	mu        sync.Mutex
	lastQuery string
}

func (s *Store) acquire(ctx context.Context) (*watchedConn, error) {
	inner, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	conn := &watchedConn{inner: inner}
	conn.timer = time.AfterFunc(checkoutWarnAfter, func() {
		conn.mu.Lock()
		last := conn.lastQuery
		conn.mu.Unlock()
		s.logger.Warn("connection checked out for too long",
			zap.Duration("threshold", checkoutWarnAfter),
			zap.String("last_query", last),
		)
	})
	return conn, nil
}

func (c *watchedConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.note(sql)
	return c.inner.Exec(ctx, sql, args...)
}

func (c *watchedConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.note(sql)
	return c.inner.QueryRow(ctx, sql, args...)
}

func (c *watchedConn) Release() {
	c.timer.Stop()
	c.inner.Release()
}

func (c *watchedConn) note(sql string) {
	c.mu.Lock()
	c.lastQuery = sql
	c.mu.Unlock()
}
