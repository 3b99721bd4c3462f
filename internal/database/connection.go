// Package database implements the item store adapter over a relational
// store, with sqlite for local use and postgres for deployments.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database selected by dbType ("sqlite" or "postgres")
// and ensures the schema exists. For sqlite, dsn is a file path whose
// directory is created on demand.
func Connect(dbType, dsn string) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch dbType {
	case "sqlite":
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %v", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist.
func initializeSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			item_type TEXT NOT NULL,
			hanzi TEXT NOT NULL,
			pinyin TEXT NOT NULL,
			meaning TEXT NOT NULL DEFAULT '',
			lesson_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			UNIQUE(hanzi, item_type, lesson_id)
		)`,
		`CREATE TABLE IF NOT EXISTS item_states (
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			item_type TEXT NOT NULL,
			stage TEXT NOT NULL,
			ease_factor INTEGER NOT NULL,
			interval_days INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			next_review_date TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, item_id, item_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_item_states_due
			ON item_states (user_id, next_review_date)`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			reviews_completed INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			total_count INTEGER NOT NULL DEFAULT 0,
			streak_maintained BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, date)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
