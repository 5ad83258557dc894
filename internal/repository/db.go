package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlavoie/expensed/internal/common"
)

// Open creates a pgx pool for one of the two stores. The personnel and
// receipts stores are independently owned, so each gets its own pool.
func Open(ctx context.Context, cfg common.DatabaseConfig, appName string, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database", "app_name", appName)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "app_name", appName, "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = appName

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "app_name", appName, "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database", "app_name", appName)
	return pool, nil
}

// HealthCheck pings a pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}

// Close closes both store pools gracefully.
func Close(people, receipts *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if people != nil {
		people.Close()
	}
	if receipts != nil {
		receipts.Close()
	}
	logger.Info("database connections closed")
}
