// Package postgres persists wounds and body sessions in PostgreSQL through
// pgx v5, and applies the schema with golang-migrate.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/config"
)

// Pool owns the connection pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and pings it.
//
// Postcondition: the returned Pool has answered one ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pc.MaxConns, pc.MinConns = cfg.MaxConns, cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// LogStats writes the pool counters at debug level.
func (p *Pool) LogStats(logger *zap.Logger) {
	s := p.pool.Stat()
	logger.Debug("database pool",
		zap.Int32("total", s.TotalConns()),
		zap.Int32("idle", s.IdleConns()),
		zap.Int32("acquired", s.AcquiredConns()),
		zap.Int64("acquires", s.AcquireCount()),
	)
}

func (p *Pool) Close() { p.pool.Close() }

// DB returns the pgx pool for repository constructors.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }
