// Package repository persists the cached rate table and the favorites set.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ratesvc/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	applicationName = "ratesvc"
	connectTimeout  = 5 * time.Second
)

// connConfig parses the DSN and tags sessions so they can be told apart in pg_stat_activity.
func connConfig(cfg *config.DatabaseConfig) (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}
	if _, ok := cc.RuntimeParams["application_name"]; !ok {
		cc.RuntimeParams["application_name"] = applicationName
	}
	if cc.ConnectTimeout == 0 {
		cc.ConnectTimeout = connectTimeout
	}
	return cc, nil
}

// NewPostgresDB opens a pooled handle for the snapshot and favorites tables and
// fails unless the server answers within the connect timeout.
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	cc, err := connConfig(cfg)
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cc)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, cc.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rate store database %s:%d unreachable: %w", cc.Host, cc.Port, err)
	}
	return db, nil
}
