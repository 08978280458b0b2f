package storage

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe in-memory Store, used in tests and as
// the default when no persistence backend is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	pref     Preference
	hasPref  bool
	history  []HistoryEntry // newest first
	settings map[string]string
	maxHist  int
}

// NewMemoryStore creates a MemoryStore. A non-positive historyLimit
// uses DefaultHistoryLimit.
func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &MemoryStore{
		settings: make(map[string]string),
		maxHist:  historyLimit,
	}
}

// Preference returns the stored preference, or the zero value when
// none was saved yet.
func (s *MemoryStore) Preference(ctx context.Context) (Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pref, nil
}

// SetPreference stores the preference.
func (s *MemoryStore) SetPreference(ctx context.Context, pref Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref = pref
	s.hasPref = true
	return nil
}

// AppendHistory prepends an entry, trimming the oldest beyond the
// bound.
func (s *MemoryStore) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append([]HistoryEntry{entry}, s.history...)
	if len(s.history) > s.maxHist {
		s.history = s.history[:s.maxHist]
	}
	return nil
}

// History returns up to limit entries, newest first. A non-positive
// limit returns everything.
func (s *MemoryStore) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]HistoryEntry, n)
	copy(out, s.history[:n])
	return out, nil
}

// ClearHistory drops all history entries.
func (s *MemoryStore) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	return nil
}

// Setting returns a flat setting value ("" when unset).
func (s *MemoryStore) Setting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[key], nil
}

// SetSetting stores a flat setting value.
func (s *MemoryStore) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

// Verify MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
