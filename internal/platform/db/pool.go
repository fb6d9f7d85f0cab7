package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConnectFailed indicates the backing store could not be reached within
// the connect timeout. It is propagated to callers unretried; retry policy
// belongs to the operator.
var ErrConnectFailed = errors.New("database connect failed")

// PoolConfig bounds the process-wide connection pool.
type PoolConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
}

// NewPool builds a bounded pgx pool and verifies reachability with a ping
// bounded by ConnectTimeout. When the pool is saturated, additional
// acquirers wait for a release (up to their context deadline) instead of
// erroring.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.IdleTimeout > 0 {
		pc.MaxConnIdleTime = cfg.IdleTimeout
	}
	if cfg.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	return pool, nil
}

// Handle is an injectable holder for the process-wide pool. Initialization
// is lazy and idempotent: the first Get constructs the pool, later calls
// reuse it. Lifecycle runs from first use to an explicit Close (or process
// exit). Tests inject a fake by constructing repositories directly.
type Handle struct {
	cfg PoolConfig

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewHandle(cfg PoolConfig) *Handle {
	return &Handle{cfg: cfg}
}

// Get returns the shared pool, constructing it on first use.
func (h *Handle) Get(ctx context.Context) (*pgxpool.Pool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pool != nil {
		return h.pool, nil
	}

	pool, err := NewPool(ctx, h.cfg)
	if err != nil {
		return nil, err
	}
	h.pool = pool
	return h.pool, nil
}

// Close shuts the pool down. Safe to call before first use and more than once.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pool != nil {
		h.pool.Close()
		h.pool = nil
	}
}
