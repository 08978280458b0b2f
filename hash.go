package pageglot

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// CacheKey builds the translation-result cache key. Source and target
// are normalized so "en-US"->"es" and "en_GB"->"es-MX" share entries.
func CacheKey(hash, source, target string) string {
	return hash + ":" + Normalize(source) + ":" + Normalize(target)
}

// PairKey identifies one engine instance by its exact language pair.
func PairKey(source, target string) string {
	return source + "->" + target
}
