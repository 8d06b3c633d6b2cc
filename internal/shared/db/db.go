package db_conn

import (
	"context"
	"fmt"
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig переносит лимиты из config.DBConfig в pgxpool.Config
func PoolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(min(cfg.MinConns, int(poolCfg.MaxConns)))
	}
	if cfg.ConnectTimeoutMs > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout()
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute
	return poolCfg, nil
}

// NewPool открывает пул и пингует БД в пределах connect_timeout_ms
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	timeout := cfg.ConnectTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info(logger.Entry{
		Action:  "db_connected",
		Message: fmt.Sprintf("connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
		Additional: map[string]any{
			"max_conns": poolCfg.MaxConns,
			"min_conns": poolCfg.MinConns,
		},
	})
	return pool, nil
}

// Close закрывает пул; nil допустим (store=memory)
func Close(pool *pgxpool.Pool, log *logger.Logger) {
	if pool == nil {
		return
	}
	pool.Close()
	log.Info(logger.Entry{Action: "db_closed", Message: "database pool closed"})
}
