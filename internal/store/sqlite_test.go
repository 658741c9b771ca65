package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveFilterAssignsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveFilter(ctx, model.SavedFilter{
		Label:      "my open items",
		Expression: "assignee = currentUser() and resolution is empty",
	})
	if err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("no ID assigned")
	}

	got, err := s.FilterByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FilterByID: %v", err)
	}
	if got == nil || got.Label != "my open items" {
		t.Errorf("got = %+v", got)
	}
}

func TestFiltersOrderedByLabel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, label := range []string{"zulu", "alpha", "mike"} {
		if _, err := s.SaveFilter(ctx, model.SavedFilter{
			Label: label, Expression: "project = ABC",
		}); err != nil {
			t.Fatalf("SaveFilter(%s): %v", label, err)
		}
	}

	filters, err := s.Filters(ctx)
	if err != nil {
		t.Fatalf("Filters: %v", err)
	}
	if len(filters) != 3 || filters[0].Label != "alpha" || filters[2].Label != "zulu" {
		t.Errorf("filters = %v", filters)
	}
}

func TestDeleteFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveFilter(ctx, model.SavedFilter{Label: "x", Expression: "y"})
	if err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}
	if err := s.DeleteFilter(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteFilter: %v", err)
	}
	got, err := s.FilterByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FilterByID: %v", err)
	}
	if got != nil {
		t.Errorf("filter still present: %+v", got)
	}
}

func TestSearchHistoryNewestFirstAndCapped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < historyLimit+10; i++ {
		if err := s.RecordSearch(ctx, fmt.Sprintf("project = P%d", i)); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}

	recent, err := s.RecentSearches(ctx, 5)
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent = %d entries", len(recent))
	}
	if recent[0].Query != fmt.Sprintf("project = P%d", historyLimit+9) {
		t.Errorf("newest = %q", recent[0].Query)
	}

	all, err := s.RecentSearches(ctx, historyLimit*2)
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if len(all) != historyLimit {
		t.Errorf("history size = %d, want capped at %d", len(all), historyLimit)
	}
}

func TestRecordSearchIgnoresEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordSearch(ctx, ""); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	recent, err := s.RecentSearches(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("recent = %v", recent)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}
