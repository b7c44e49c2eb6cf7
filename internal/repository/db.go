package repository

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/avollmer/invoice-extractor/internal/common"
)

// Open connects to the results database. DSNs starting with postgres:// go
// through pgx; anything else (a file path or ":memory:") is treated as
// SQLite.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("db.connect", "driver", driver)

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("db.connect_failed", "driver", driver, "error", err)
		return nil, common.WrapError(err, "open database")
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ping database")
	}

	logger.Info("db.connected", "driver", driver)
	return db, nil
}
