package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresConfig holds the connection parameters for a Postgres store.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// NewPostgresDB opens a pooled connection and verifies it with a ping.
func NewPostgresDB(ctx context.Context, cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Money columns are unscaled NUMERIC so amounts and fees are stored exactly
// as they were priced.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		account_number CHAR(10) PRIMARY KEY,
		account_name   TEXT NOT NULL,
		balance        NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id                  BIGSERIAL PRIMARY KEY,
		origin_account      CHAR(10) NOT NULL,
		destination_account CHAR(10) NOT NULL,
		amount              NUMERIC NOT NULL CHECK (amount > 0),
		fee                 NUMERIC NOT NULL,
		transfer_date       DATE NOT NULL,
		scheduled_date      TIMESTAMPTZ NOT NULL,
		status              VARCHAR(16) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_origin_account ON transfers (origin_account)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_destination_account ON transfers (destination_account)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers (status)`,
}

// Migrate creates the accounts and transfers tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
