package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout.
const (
	redisPrefKey     = "pageglot:prefs"
	redisHistoryKey  = "pageglot:history"
	redisSettingsKey = "pageglot:settings"
)

// RedisStore is a Redis-backed Store.
type RedisStore struct {
	client  *redis.Client
	maxHist int
}

// NewRedisStore connects and verifies the connection. A non-positive
// historyLimit uses DefaultHistoryLimit.
func NewRedisStore(url string, historyLimit int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, historyLimit), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, historyLimit int) *RedisStore {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &RedisStore{client: client, maxHist: historyLimit}
}

// Preference loads the stored preference; a missing key yields the
// zero value.
func (s *RedisStore) Preference(ctx context.Context) (Preference, error) {
	raw, err := s.client.Get(ctx, redisPrefKey).Result()
	if errors.Is(err, redis.Nil) {
		return Preference{}, nil
	}
	if err != nil {
		return Preference{}, err
	}

	var pref Preference
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		return Preference{}, err
	}
	return pref, nil
}

// SetPreference stores the preference as JSON.
func (s *RedisStore) SetPreference(ctx context.Context, pref Preference) error {
	raw, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisPrefKey, string(raw), 0).Err()
}

// AppendHistory pushes an entry and trims the list to the bound.
func (s *RedisStore) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.LPush(ctx, redisHistoryKey, string(raw)).Err(); err != nil {
		return err
	}
	return s.client.LTrim(ctx, redisHistoryKey, 0, int64(s.maxHist-1)).Err()
}

// History returns up to limit entries, newest first.
func (s *RedisStore) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > s.maxHist {
		limit = s.maxHist
	}

	raws, err := s.client.LRange(ctx, redisHistoryKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(raws))
	for _, raw := range raws {
		var entry HistoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue // skip unreadable rows rather than losing the list
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ClearHistory drops the history list.
func (s *RedisStore) ClearHistory(ctx context.Context) error {
	return s.client.Del(ctx, redisHistoryKey).Err()
}

// Setting returns a flat setting value ("" when unset).
func (s *RedisStore) Setting(ctx context.Context, key string) (string, error) {
	val, err := s.client.HGet(ctx, redisSettingsKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a flat setting value.
func (s *RedisStore) SetSetting(ctx context.Context, key, value string) error {
	return s.client.HSet(ctx, redisSettingsKey, key, value).Err()
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Verify RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
