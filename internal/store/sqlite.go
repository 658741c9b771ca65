// Package store persists local user state (saved JQL filters and
// search history) in a SQLite database. No server data is cached here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

// historyLimit caps the number of retained search history entries.
const historyLimit = 100

// SQLiteStore persists filters and history in a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveFilter inserts or replaces a saved filter. A filter with no ID
// gets a new UUID.
func (s *SQLiteStore) SaveFilter(ctx context.Context, filter model.SavedFilter) (model.SavedFilter, error) {
	if filter.ID == "" {
		filter.ID = uuid.New().String()
	}
	if filter.CreatedAt.IsZero() {
		filter.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO saved_filters (id, label, expression, created_at)
		VALUES (?, ?, ?, ?)`,
		filter.ID, filter.Label, filter.Expression, filter.CreatedAt.UTC(),
	)
	if err != nil {
		return model.SavedFilter{}, fmt.Errorf("saving filter %q: %w", filter.Label, err)
	}
	return filter, nil
}

// Filters retrieves all saved filters ordered by label.
func (s *SQLiteStore) Filters(ctx context.Context) ([]model.SavedFilter, error) {
	var filters []model.SavedFilter
	err := s.db.SelectContext(ctx, &filters,
		"SELECT id, label, expression, created_at FROM saved_filters ORDER BY label",
	)
	if err != nil {
		return nil, fmt.Errorf("querying saved filters: %w", err)
	}
	return filters, nil
}

// FilterByID retrieves one saved filter, or nil when absent.
func (s *SQLiteStore) FilterByID(ctx context.Context, id string) (*model.SavedFilter, error) {
	var filter model.SavedFilter
	err := s.db.GetContext(ctx, &filter,
		"SELECT id, label, expression, created_at FROM saved_filters WHERE id = ?", id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting filter %s: %w", id, err)
	}
	return &filter, nil
}

// DeleteFilter removes a saved filter by ID.
func (s *SQLiteStore) DeleteFilter(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM saved_filters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting filter %s: %w", id, err)
	}
	return nil
}

// RecordSearch appends a query to the search history and trims the
// history to its cap.
func (s *SQLiteStore) RecordSearch(ctx context.Context, query string) error {
	if query == "" {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO search_history (query, executed_at) VALUES (?, ?)",
		query, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM search_history WHERE id NOT IN (
			SELECT id FROM search_history ORDER BY executed_at DESC, id DESC LIMIT ?
		)`, historyLimit,
	)
	if err != nil {
		return fmt.Errorf("trimming search history: %w", err)
	}

	return tx.Commit()
}

// RecentSearches returns the most recent history entries, newest first.
func (s *SQLiteStore) RecentSearches(ctx context.Context, limit int) ([]model.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []model.SearchHistoryEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, query, executed_at FROM search_history
		ORDER BY executed_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	return entries, nil
}
