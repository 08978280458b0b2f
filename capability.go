package pageglot

import "context"

// Availability is the host engine's readiness for a language pair.
type Availability int

const (
	Unavailable Availability = iota
	Available
	Downloadable
	Downloading
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Downloadable:
		return "downloadable"
	case Downloading:
		return "downloading"
	}
	return "unavailable"
}

// ProgressFunc receives model download progress in [0,1].
type ProgressFunc func(fraction float64)

// EngineFactory is the host translation capability. Probe never
// triggers a download; Create may, reporting progress through the
// callback.
type EngineFactory interface {
	Probe(ctx context.Context, source, target string) (Availability, error)
	Create(ctx context.Context, source, target string, progress ProgressFunc) (Engine, error)
}

// Engine translates text for one fixed language pair.
type Engine interface {
	Translate(ctx context.Context, text string) (string, error)
	TranslateStreaming(ctx context.Context, text string) (<-chan string, error)
	Close() error
}

// Candidate is one ranked language-identification result.
type Candidate struct {
	Tag        string
	Confidence float64
}

// DetectorFactory is the host language-identification capability.
type DetectorFactory interface {
	Create(ctx context.Context) (Detector, error)
}

// Detector identifies the language of a text, best candidate first.
type Detector interface {
	Detect(ctx context.Context, text string) ([]Candidate, error)
}

// TranslationCache stores translation results keyed by CacheKey.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}
