package store

import (
	"context"

	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

// Store is the persistence interface for local user state.
type Store interface {
	// SaveFilter inserts or replaces a saved filter, assigning an ID
	// when missing.
	SaveFilter(ctx context.Context, filter model.SavedFilter) (model.SavedFilter, error)

	// Filters lists all saved filters ordered by label.
	Filters(ctx context.Context) ([]model.SavedFilter, error)

	// FilterByID returns one filter, or nil when absent.
	FilterByID(ctx context.Context, id string) (*model.SavedFilter, error)

	// DeleteFilter removes a saved filter.
	DeleteFilter(ctx context.Context, id string) error

	// RecordSearch appends a query to the search history.
	RecordSearch(ctx context.Context, query string) error

	// RecentSearches returns the newest history entries first.
	RecentSearches(ctx context.Context, limit int) ([]model.SearchHistoryEntry, error)

	// Close releases the underlying database.
	Close() error
}
