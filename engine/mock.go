package engine

import (
	"context"
	"sync"
)

// MockFactory is a scriptable engine factory for testing.
type MockFactory struct {
	mu sync.Mutex

	// Status controls what Probe reports (default Available).
	Status Availability
	// CreateErr makes Create fail.
	CreateErr error
	// Translations maps source text to its translation; unknown texts
	// translate to "[text]".
	Translations map[string]string
	// FailOn maps source text to the error its translation returns.
	FailOn map[string]error
	// Gates maps source text to a channel the translate call blocks on
	// until it is closed. Used to script cancellation races.
	Gates map[string]chan struct{}

	ProbeCount  int
	CreateCount int
	// Engines holds every created engine, in creation order.
	Engines []*MockEngine
}

// NewMockFactory creates a factory with a default translation table.
func NewMockFactory() *MockFactory {
	return &MockFactory{
		Status: Available,
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Probe returns the scripted availability.
func (f *MockFactory) Probe(ctx context.Context, source, target string) (Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProbeCount++
	return f.Status, nil
}

// Create returns a new mock engine bound to the pair.
func (f *MockFactory) Create(ctx context.Context, source, target string, progress ProgressFunc) (Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCount++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if progress != nil {
		progress(1.0)
	}
	eng := &MockEngine{
		Source:       source,
		Target:       target,
		translations: f.Translations,
		failOn:       f.FailOn,
		gates:        f.Gates,
	}
	f.Engines = append(f.Engines, eng)
	return eng, nil
}

// TotalCalls sums translate calls across all created engines.
func (f *MockFactory) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, eng := range f.Engines {
		total += eng.Calls()
	}
	return total
}

// MockEngine is the engine created by MockFactory.
type MockEngine struct {
	Source string
	Target string

	translations map[string]string
	failOn       map[string]error
	gates        map[string]chan struct{}

	mu        sync.Mutex
	callCount int
	closed    bool
}

// Translate returns the scripted translation, blocking first on the
// text's gate if one is set.
func (e *MockEngine) Translate(ctx context.Context, text string) (string, error) {
	if gate, ok := e.gates[text]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	e.mu.Lock()
	e.callCount++
	e.mu.Unlock()

	if err, ok := e.failOn[text]; ok {
		return "", err
	}
	if out, ok := e.translations[text]; ok {
		return out, nil
	}
	return "[" + text + "]", nil
}

// TranslateStreaming yields the whole translation as one chunk.
func (e *MockEngine) TranslateStreaming(ctx context.Context, text string) (<-chan string, error) {
	result, err := e.Translate(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make(chan string, 1)
	out <- result
	close(out)
	return out, nil
}

// Close marks the engine closed.
func (e *MockEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Calls returns how many translate calls the engine served.
func (e *MockEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// IsClosed reports whether Close was called.
func (e *MockEngine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// MockDetectorFactory is a scriptable detector factory for testing.
type MockDetectorFactory struct {
	// ByText maps sample text to its detected tag.
	ByText map[string]string
	// Default is returned for texts not in ByText ("" yields no
	// candidates).
	Default string
	// Err makes every Detect call fail.
	Err error

	CallCount int
}

// Create returns the detector.
func (f *MockDetectorFactory) Create(ctx context.Context) (Detector, error) {
	return &mockDetector{factory: f}, nil
}

type mockDetector struct {
	factory *MockDetectorFactory
}

func (d *mockDetector) Detect(ctx context.Context, text string) ([]Candidate, error) {
	d.factory.CallCount++
	if d.factory.Err != nil {
		return nil, d.factory.Err
	}
	if tag, ok := d.factory.ByText[text]; ok {
		return []Candidate{{Tag: tag, Confidence: 0.99}}, nil
	}
	if d.factory.Default == "" {
		return nil, nil
	}
	return []Candidate{{Tag: d.factory.Default, Confidence: 0.5}}, nil
}

// Verify interface compliance.
var (
	_ Factory         = (*MockFactory)(nil)
	_ Engine          = (*MockEngine)(nil)
	_ DetectorFactory = (*MockDetectorFactory)(nil)
)
