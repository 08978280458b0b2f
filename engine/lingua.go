package engine

import (
	"context"
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minDetectionLetters is the minimum number of letters before the
// detector is consulted; shorter samples are too noisy to rank.
const minDetectionLetters = 3

// LinguaDetectorFactory backs the language-identification capability
// with the lingua-go n-gram models. The underlying model build is
// expensive, so one detector is shared process-wide.
type LinguaDetectorFactory struct{}

// NewLinguaDetectorFactory creates the factory.
func NewLinguaDetectorFactory() *LinguaDetectorFactory {
	return &LinguaDetectorFactory{}
}

var (
	linguaOnce sync.Once
	linguaDet  lingua.LanguageDetector
)

func sharedLinguaDetector() lingua.LanguageDetector {
	linguaOnce.Do(func() {
		linguaDet = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return linguaDet
}

// Create returns the shared detector instance.
func (f *LinguaDetectorFactory) Create(ctx context.Context) (Detector, error) {
	return &linguaDetector{det: sharedLinguaDetector()}, nil
}

type linguaDetector struct {
	det lingua.LanguageDetector
}

// Detect ranks candidate languages for the sample, best first, as
// lowercase ISO 639-1 tags.
func (d *linguaDetector) Detect(ctx context.Context, text string) ([]Candidate, error) {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return nil, nil
	}

	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minDetectionLetters {
		return nil, nil
	}

	values := d.det.ComputeLanguageConfidenceValues(sample)
	candidates := make([]Candidate, 0, len(values))
	for _, v := range values {
		code := strings.ToLower(v.Language().IsoCode639_1().String())
		if len(code) != 2 {
			continue
		}
		candidates = append(candidates, Candidate{
			Tag:        code,
			Confidence: v.Value(),
		})
	}
	return candidates, nil
}

// Verify interface compliance.
var (
	_ DetectorFactory = (*LinguaDetectorFactory)(nil)
	_ Detector        = (*linguaDetector)(nil)
)
