// Package cache provides translation-result caching implementations.
package cache

// TranslationCache is the interface for translation-result caching.
// Keys are built by pageglot.CacheKey (text hash plus normalized
// language pair).
type TranslationCache interface {
	// Get retrieves a cached translation. Returns false if the key is
	// missing or expired.
	Get(key string) (string, bool)

	// Set stores a translation.
	Set(key string, value string) error
}
