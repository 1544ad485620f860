package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/config"
	"github.com/rezkam/central/internal/storage/fs"
	"github.com/rezkam/central/internal/storage/gcs"
	"github.com/rezkam/central/internal/storage/postgres"
	"github.com/rezkam/central/internal/storage/sqlite"
)

// openStore creates the rule repository selected by cfg.Type.
func openStore(ctx context.Context, cfg config.StorageConfig) (planner.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case config.StoragePostgres:
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
			AutoMigrate:     cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "dsn", maskPassword(cfg.DSN))
		return store, nil

	case config.StorageSQLite:
		store, err := sqlite.NewStore(ctx, sqlite.Config{Path: cfg.SQLitePath, AutoMigrate: cfg.AutoMigrate})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "path", cfg.SQLitePath)
		return store, nil

	case config.StorageFS:
		store, err := fs.NewStore(cfg.FSDir)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "dir", cfg.FSDir)
		return store, nil

	case config.StorageGCS:
		store, err := gcs.NewStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "bucket", cfg.GCSBucket, "prefix", cfg.GCSPrefix)
		return store, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageType, cfg.Type)
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		// Unparseable: redact everything.
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
