package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var errPoolNotInitialized = errors.New("database pool is not initialized")

// currentPool returns the pool, or nil after Close or on a nil receiver.
func (db *PostgresDB) currentPool() *pgxpool.Pool {
	if db == nil {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.Pool
}

// Ping kiểm tra database connection có còn sống và responsive không
func (db *PostgresDB) Ping(ctx context.Context) error {
	pool := db.currentPool()
	if pool == nil {
		return errPoolNotInitialized
	}

	// 5 giây - nếu DB không respond trong 5s thì có vấn đề
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close đóng tất cả connections trong pool.
// Safe to call multiple times and concurrently with Stats.
func (db *PostgresDB) Close() error {
	if db == nil {
		return nil
	}

	db.mu.Lock()
	pool := db.Pool
	db.Pool = nil
	db.mu.Unlock()

	if pool == nil {
		return nil
	}

	log.Info().Msg("[DATABASE] Closing database connection pool...")
	pool.Close()
	log.Info().Msg("[DATABASE] Connection pool closed successfully")

	return nil
}

// PoolStats chứa thống kê về connection pool, exported to /metrics
type PoolStats struct {
	AcquiredConns        int32
	IdleConns            int32
	TotalConns           int32
	MaxConns             int32
	AcquireCount         int64
	CanceledAcquireCount int64
	EmptyAcquireCount    int64
	AcquireDuration      time.Duration
}

// Stats trả về snapshot của connection pool statistics
func (db *PostgresDB) Stats() (*PoolStats, error) {
	pool := db.currentPool()
	if pool == nil {
		return nil, errPoolNotInitialized
	}

	raw := pool.Stat()
	return &PoolStats{
		AcquiredConns:        raw.AcquiredConns(),
		IdleConns:            raw.IdleConns(),
		TotalConns:           raw.TotalConns(),
		MaxConns:             raw.MaxConns(),
		AcquireCount:         raw.AcquireCount(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		EmptyAcquireCount:    raw.EmptyAcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
	}, nil
}
