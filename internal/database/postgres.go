package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/ruralpay/payments-engine/internal/config"
	"github.com/sirupsen/logrus"
)

// Schema creates the tables used to persist replay runs.
const Schema = `
CREATE TABLE IF NOT EXISTS replay_runs (
	run_id     UUID PRIMARY KEY,
	records    INTEGER NOT NULL,
	applied    INTEGER NOT NULL,
	rejected   INTEGER NOT NULL,
	malformed  INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS account_snapshots (
	run_id    UUID NOT NULL REFERENCES replay_runs (run_id) ON DELETE CASCADE,
	client    INTEGER NOT NULL,
	available NUMERIC(24, 4) NOT NULL,
	held      NUMERIC(24, 4) NOT NULL,
	total     NUMERIC(24, 4) NOT NULL,
	locked    BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, client)
);`

// InitDB opens and pings the database, then applies Schema.
func InitDB(cfg config.DatabaseConfig, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("Database connection established")
	return db, nil
}

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}
