package model

import "time"

// SavedFilter is a user-defined JQL expression persisted locally.
type SavedFilter struct {
	ID         string    `json:"id" db:"id"`
	Label      string    `json:"label" db:"label"`
	Expression string    `json:"expression" db:"expression"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SearchHistoryEntry is one past search, kept for quick re-runs.
type SearchHistoryEntry struct {
	ID         int64     `json:"id" db:"id"`
	Query      string    `json:"query" db:"query"`
	ExecutedAt time.Time `json:"executed_at" db:"executed_at"`
}
