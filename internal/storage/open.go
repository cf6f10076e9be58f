// Package storage picks the record store configured for the deployment.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"restroom_radar/internal/domain"
	"restroom_radar/internal/shared"
	mysqlrepo "restroom_radar/internal/storage/mysql"
	"restroom_radar/internal/storage/postgres"
)

// Open connects to the configured store. The returned func releases it.
func Open(ctx context.Context, cfg shared.Config) (domain.RestroomRepository, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.New(pool), pool.Close, nil
	default:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("open mysql: verify connection: %w", err)
		}
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	}
}
