// Package storage persists user preferences, translation history and
// flat settings. It is a thin key-value collaborator: no schema, no
// indexing, no queries.
package storage

import (
	"context"
	"time"
)

// DefaultHistoryLimit bounds the translation history list.
const DefaultHistoryLimit = 100

// Preference is the persisted language selection. SourceLanguage may
// be "auto"; TargetLanguage never is.
type Preference struct {
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// HistoryEntry is one recorded translation.
type HistoryEntry struct {
	SourceText     string    `json:"sourceText"`
	ResultText     string    `json:"resultText"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	At             time.Time `json:"at"`
}

// Store is the persistence interface. History is append-bounded:
// appending beyond the limit drops the oldest entries.
type Store interface {
	Preference(ctx context.Context) (Preference, error)
	SetPreference(ctx context.Context, pref Preference) error

	AppendHistory(ctx context.Context, entry HistoryEntry) error
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
	ClearHistory(ctx context.Context) error

	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
