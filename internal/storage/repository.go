package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/activity"
	_ "modernc.org/sqlite"
)

// Repository stores command logs in SQLite
type Repository struct {
	db *sql.DB
}

var (
	_ activity.Sink   = (*Repository)(nil)
	_ activity.Reader = (*Repository)(nil)
)

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS command_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command_id VARCHAR(32) NOT NULL,
			command VARCHAR(32) NOT NULL,
			user VARCHAR(100) NOT NULL,
			guild VARCHAR(100) NOT NULL DEFAULT '',
			channel VARCHAR(100) NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_command_logs_timestamp ON command_logs(timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Append inserts one command log row. Rows are never updated.
func (r *Repository) Append(ctx context.Context, e activity.Entry) error {
	row := fromEntry(e)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_logs (command_id, command, user, guild, channel, content, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.CommandID, row.Command, row.User, row.Guild, row.Channel, row.Content, row.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert command log: %w", err)
	}
	return nil
}

// ListSince returns rows written at or after since, oldest first
func (r *Repository) ListSince(ctx context.Context, since time.Time) ([]activity.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT command_id, command, user, guild, channel, content, timestamp
		 FROM command_logs WHERE timestamp >= ? ORDER BY timestamp, id`,
		since.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query command logs: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var (
			row CommandLog
			ts  int64
		)
		if err := rows.Scan(&row.CommandID, &row.Command, &row.User, &row.Guild, &row.Channel, &row.Content, &ts); err != nil {
			return nil, err
		}
		row.Timestamp = time.Unix(0, ts).UTC()
		entries = append(entries, row.Entry())
	}

	return entries, rows.Err()
}
