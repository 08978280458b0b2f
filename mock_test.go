package pageglot

import (
	"context"
	"sync"
	"time"
)

// fakeFactory is a scriptable engine factory used across the package
// tests.
type fakeFactory struct {
	mu sync.Mutex

	status       Availability
	createErr    error
	translations map[string]string
	failOn       map[string]error
	// gates maps source text to a channel the translate call blocks on
	// until closed, to script cancellation races.
	gates map[string]chan struct{}

	probeCount  int
	createCount int
	engines     []*fakeEngine
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		status: Available,
		translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

func (f *fakeFactory) Probe(ctx context.Context, source, target string) (Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCount++
	return f.status, nil
}

func (f *fakeFactory) Create(ctx context.Context, source, target string, progress ProgressFunc) (Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCount++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if progress != nil {
		progress(1.0)
	}
	eng := &fakeEngine{
		source:       source,
		target:       target,
		translations: f.translations,
		failOn:       f.failOn,
		gates:        f.gates,
	}
	f.engines = append(f.engines, eng)
	return eng, nil
}

// totalCalls sums translate calls across every created engine.
func (f *fakeFactory) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, eng := range f.engines {
		total += eng.calls()
	}
	return total
}

type fakeEngine struct {
	source string
	target string

	translations map[string]string
	failOn       map[string]error
	gates        map[string]chan struct{}

	mu        sync.Mutex
	callCount int
	closed    bool
}

func (e *fakeEngine) Translate(ctx context.Context, text string) (string, error) {
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

func (e *fakeEngine) TranslateStreaming(ctx context.Context, text string) (<-chan string, error) {
	result, err := e.Translate(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make(chan string, 1)
	out <- result
	close(out)
	return out, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeEngine) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

func (e *fakeEngine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// fakeDetectorFactory scripts language identification.
type fakeDetectorFactory struct {
	byText    map[string]string
	fallback  string
	err       error
	callCount int
}

func (f *fakeDetectorFactory) Create(ctx context.Context) (Detector, error) {
	return &fakeDetector{factory: f}, nil
}

type fakeDetector struct {
	factory *fakeDetectorFactory
}

func (d *fakeDetector) Detect(ctx context.Context, text string) ([]Candidate, error) {
	d.factory.callCount++
	if d.factory.err != nil {
		return nil, d.factory.err
	}
	if tag, ok := d.factory.byText[text]; ok {
		return []Candidate{{Tag: tag, Confidence: 0.99}}, nil
	}
	if d.factory.fallback == "" {
		return nil, nil
	}
	return []Candidate{{Tag: d.factory.fallback, Confidence: 0.5}}, nil
}

// mapCache is a plain map TranslationCache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

// manualTimer is a stopper whose callback fires only when the test
// says so.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.stopped = true
	return true
}

func (t *manualTimer) fire() {
	if !t.stopped {
		t.fn()
	}
}

// manualTimers replaces afterFunc so debounced work runs under test
// control.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualTimers) afterFunc(d time.Duration, fn func()) stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// fireLast runs the most recently scheduled timer.
func (m *manualTimers) fireLast() {
	m.mu.Lock()
	var t *manualTimer
	if len(m.timers) > 0 {
		t = m.timers[len(m.timers)-1]
	}
	m.mu.Unlock()
	if t != nil {
		t.fire()
	}
}

func (m *manualTimers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
