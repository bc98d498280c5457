package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		name           TEXT PRIMARY KEY,
		won_games      INTEGER NOT NULL DEFAULT 0,
		lost_games     INTEGER NOT NULL DEFAULT 0,
		tied_games     INTEGER NOT NULL DEFAULT 0,
		goals_shot     INTEGER NOT NULL DEFAULT 0,
		goals_received INTEGER NOT NULL DEFAULT 0,
		rating         DOUBLE PRECISION NOT NULL DEFAULT 1200,
		rating_delta   DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS active_tournament (
		id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		snapshot   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id              SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		max_score       INTEGER NOT NULL CHECK (max_score > 0),
		number_of_games INTEGER NOT NULL CHECK (number_of_games > 0),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables the service needs if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
