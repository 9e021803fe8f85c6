package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/apperrors"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/metrics"
)

// Provider hands out one Session per request. Each Session pins its own
// pooled connection, so sessions are never shared.
type Provider struct {
	db    *gorm.DB
	inUse atomic.Int64
}

func NewProvider(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

// Open acquires a connection bound to ctx. The caller must Close the session.
func (p *Provider) Open(ctx context.Context) (*Session, error) {
	sqlDB, err := p.db.DB()
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("acquire connection: %w", err))
	}

	// Context forces a fresh Statement, so setting ConnPool does not leak
	// into the shared handle.
	gdb := p.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	gdb.Statement.ConnPool = conn

	p.inUse.Add(1)
	metrics.DBSessionsOpen.Inc()
	return &Session{db: gdb, conn: conn, release: p.release}, nil
}

func (p *Provider) release() {
	p.inUse.Add(-1)
	metrics.DBSessionsOpen.Dec()
}

// InUse reports how many sessions are open and not yet closed.
func (p *Provider) InUse() int64 {
	return p.inUse.Load()
}

func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Session is a request-scoped unit of database access.
type Session struct {
	db      *gorm.DB
	conn    *sql.Conn
	closed  atomic.Bool
	release func()
}

// DB returns a handle on the pinned connection bound to ctx.
func (s *Session) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn in a transaction on the pinned connection. It commits
// when fn returns nil and rolls back on error or panic.
func (s *Session) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB(ctx).Transaction(fn)
}

// Close returns the connection to the pool. Calling it more than once is a no-op.
func (s *Session) Close() error {
	if s == nil || s.conn == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.release != nil {
		s.release()
	}
	return s.conn.Close()
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
