package pageglot

import "testing"

func TestHashText(t *testing.T) {
	h1 := HashText("Hello World")
	h2 := HashText("  Hello World  ")
	h3 := HashText("Hello world")

	if h1 != h2 {
		t.Error("hash should ignore surrounding whitespace")
	}
	if h1 == h3 {
		t.Error("different texts should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestCacheKey(t *testing.T) {
	h := HashText("Hello")

	k1 := CacheKey(h, "en-US", "es")
	k2 := CacheKey(h, "en_GB", "es-MX")
	if k1 != k2 {
		t.Errorf("regional variants should share cache entries: %q vs %q", k1, k2)
	}

	k3 := CacheKey(h, "en", "fr")
	if k1 == k3 {
		t.Error("different target languages must not share cache entries")
	}
}

func TestPairKey(t *testing.T) {
	if got := PairKey("en", "es"); got != "en->es" {
		t.Errorf("PairKey = %q, want en->es", got)
	}
	if PairKey("en", "es") == PairKey("es", "en") {
		t.Error("pair key must be direction sensitive")
	}
}
