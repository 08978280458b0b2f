package pageglot

import "golang.org/x/net/html"

// AutoDetect is the sentinel source language meaning "identify per text".
// It is never valid as a target language.
const AutoDetect = "auto"

// LanguagePreference is a snapshot of the user's language selection.
// TargetLanguage is never AutoDetect.
type LanguagePreference struct {
	SourceLanguage string
	TargetLanguage string
}

// TranslatableFragment is one discovered unit of translatable page text.
// Identity is node identity: two fragments with equal text at different
// locations are distinct. ID is a stable handle assigned at scan time;
// the same node keeps the same ID across rescans.
type TranslatableFragment struct {
	ID   int
	Node *html.Node
	Text string
}

// AnnotationKind distinguishes translated markers from failure markers.
type AnnotationKind string

const (
	AnnotationTranslated AnnotationKind = "translated"
	AnnotationFailed     AnnotationKind = "failed"
)

// Annotation is the rendered marker attached after a fragment's node.
// At most one annotation exists per fragment; rendering a new one
// replaces any prior marker.
type Annotation struct {
	Kind AnnotationKind
	Text string
}

// PageState is the per-document translation state.
type PageState int

const (
	StateIdle PageState = iota
	StateSweeping
	StateTranslated
)

func (s PageState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSweeping:
		return "sweeping"
	case StateTranslated:
		return "translated"
	}
	return "unknown"
}

// TranslationResult is the outcome of one gateway call.
// ResolvedSource may differ from the requested source when AutoDetect
// was supplied. Identity is true when the same-language short-circuit
// fired and no engine call was made.
type TranslationResult struct {
	Text           string
	ResolvedSource string
	ResolvedTarget string
	Identity       bool
}

// SweepResult summarizes one full or incremental sweep.
type SweepResult struct {
	Total      int // fragments discovered
	Translated int // fragments with a translated annotation
	Failed     int // fragments with a failed annotation
	Skipped    int // fragments left untouched (cancellation)
}

// IgnoredTags contains tags whose text content is never translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"meta":     true,
	"title":    true,
	"head":     true,
	"noscript": true,
	"code":     true,
	"pre":      true,
	"textarea": true,
}

// Defaults for the configurable thresholds. The values mirror the
// product behavior and should not be changed without product input.
const (
	DefaultFragmentMaxLen  = 500
	DefaultSelectionMaxLen = 5000
)
