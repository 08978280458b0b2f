package pageglot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type renderRec struct {
	mu         sync.Mutex
	iconShows  []Rect
	iconHides  int
	popups     []TranslationResult
	popupErrs  []error
	popupHides int
	toasts     []string
}

func (r *renderRec) ShowIcon(at Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.iconShows = append(r.iconShows, at)
}

func (r *renderRec) HideIcon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.iconHides++
}

func (r *renderRec) ShowPopup(at Rect, result TranslationResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popups = append(r.popups, result)
	r.popupErrs = append(r.popupErrs, err)
}

func (r *renderRec) HidePopup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popupHides++
}

func (r *renderRec) ShowToast(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, message)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestOverlay wires a controller with manual timers and a fake
// clock, selecting into Spanish.
func newTestOverlay(factory *fakeFactory) (*OverlayController, *renderRec, *manualTimers, *fakeClock) {
	renderer := &renderRec{}
	timers := &manualTimers{}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}

	det := &fakeDetectorFactory{fallback: "en"}
	gw := NewGateway(factory, WithDetectorFactory(det))

	c := NewOverlayController(gw, renderer, WithTargetLanguage(func() string { return "es" }))
	c.afterFunc = timers.afterFunc
	c.now = clock.now
	return c, renderer, timers, clock
}

var anchor = Rect{X: 100, Y: 200, Width: 80, Height: 16}

func TestOverlaySelectionShowsIcon(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hello", anchor)
	if len(renderer.iconShows) != 0 {
		t.Fatal("icon must wait for the selection to settle")
	}

	timers.fireLast()

	if c.State() != OverlayIconShown {
		t.Errorf("state = %v, want icon-shown", c.State())
	}
	if len(renderer.iconShows) != 1 || renderer.iconShows[0] != anchor {
		t.Errorf("icon shows = %v, want one at the anchor", renderer.iconShows)
	}
}

func TestOverlaySettleDebounce(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hel", anchor)
	c.HandleSelection("Hello", anchor)

	if !timers.timers[0].stopped {
		t.Error("a newer selection should stop the pending settle timer")
	}

	timers.fireLast()
	if len(renderer.iconShows) != 1 {
		t.Errorf("icon shows = %d, want 1", len(renderer.iconShows))
	}
}

func TestOverlayEmptySelection(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("   ", anchor)
	timers.fireLast()

	if c.State() != OverlayNoSelection {
		t.Errorf("state = %v, want no-selection", c.State())
	}
	if len(renderer.iconShows) != 0 {
		t.Error("no icon for a whitespace selection")
	}
}

func TestOverlayOverlongSelection(t *testing.T) {
	factory := newFakeFactory()
	c, renderer, timers, _ := newTestOverlay(factory)

	c.HandleSelection(strings.Repeat("a", DefaultSelectionMaxLen+1), anchor)
	timers.fireLast()

	if len(renderer.toasts) != 1 {
		t.Fatalf("toasts = %d, want exactly 1", len(renderer.toasts))
	}
	if renderer.toasts[0] != "selection too long to translate" {
		t.Errorf("toast = %q", renderer.toasts[0])
	}
	if len(renderer.iconShows) != 0 {
		t.Error("no icon for a rejected selection")
	}
	if factory.totalCalls() != 0 {
		t.Error("rejection happens before any engine call")
	}
	if c.State() != OverlayNoSelection {
		t.Errorf("state = %v, want no-selection", c.State())
	}
}

func TestOverlayIconClickShowsPopup(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hello", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	if c.State() != OverlayPopupShown {
		t.Errorf("state = %v, want popup-shown", c.State())
	}
	if renderer.iconHides != 1 {
		t.Errorf("icon hides = %d, want 1", renderer.iconHides)
	}
	if len(renderer.popups) != 1 {
		t.Fatalf("popups = %d, want 1", len(renderer.popups))
	}
	if renderer.popups[0].Text != "Hola" {
		t.Errorf("popup text = %q, want Hola", renderer.popups[0].Text)
	}
	if renderer.popupErrs[0] != nil {
		t.Errorf("popup err = %v, want nil", renderer.popupErrs[0])
	}
}

func TestOverlaySameLanguageSelection(t *testing.T) {
	factory := newFakeFactory()
	renderer := &renderRec{}
	timers := &manualTimers{}

	det := &fakeDetectorFactory{fallback: "es"}
	gw := NewGateway(factory, WithDetectorFactory(det))
	c := NewOverlayController(gw, renderer, WithTargetLanguage(func() string { return "es" }))
	c.afterFunc = timers.afterFunc

	c.HandleSelection("Hola mundo", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	if len(renderer.popups) != 1 {
		t.Fatalf("popups = %d, want 1", len(renderer.popups))
	}
	if renderer.popups[0].Text != "Hola mundo" {
		t.Errorf("popup text = %q, want the selection unchanged", renderer.popups[0].Text)
	}
	if !renderer.popups[0].Identity {
		t.Error("same-language popup should be an identity result")
	}
	if factory.totalCalls() != 0 {
		t.Error("identity must not reach the engine")
	}
}

func TestOverlayIconClickWithoutIcon(t *testing.T) {
	c, renderer, _, _ := newTestOverlay(newFakeFactory())

	c.HandleIconClick(context.Background())

	if len(renderer.popups) != 0 {
		t.Error("click without a shown icon is a no-op")
	}
}

func TestOverlayClearWhilePopupShown(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hello", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	// The click that opened the popup also clears the native selection.
	c.HandleSelectionCleared()

	if c.State() != OverlayPopupShown {
		t.Errorf("state = %v, want popup-shown (clear is inert while open)", c.State())
	}
	if renderer.popupHides != 0 {
		t.Error("popup must not close on selection clear")
	}
}

func TestOverlayNewSelectionWhilePopupShown(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hello", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	c.HandleSelection("World", anchor)
	timers.fireLast()

	if len(renderer.iconShows) != 1 {
		t.Error("no second icon while the popup is open")
	}
}

func TestOverlayDismissGrace(t *testing.T) {
	c, renderer, timers, clock := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hello", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	// Inside the grace period the dismissal is inert.
	clock.advance(DefaultDismissGrace / 2)
	c.HandleOutsideClick()
	if c.State() != OverlayPopupShown || renderer.popupHides != 0 {
		t.Fatal("outside click within the grace period must not dismiss")
	}

	clock.advance(DefaultDismissGrace)
	c.HandleScroll()
	if c.State() != OverlayNoSelection {
		t.Errorf("state = %v, want no-selection after grace", c.State())
	}
	if renderer.popupHides != 1 {
		t.Errorf("popup hides = %d, want 1", renderer.popupHides)
	}
}

func TestOverlayCloseClickIsImmediate(t *testing.T) {
	c, renderer, timers, _ := newTestOverlay(newFakeFactory())

	c.HandleSelection("Hello", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	// No clock advance: close ignores the grace period.
	c.HandleCloseClick()

	if c.State() != OverlayNoSelection {
		t.Errorf("state = %v, want no-selection", c.State())
	}
	if renderer.popupHides != 1 {
		t.Errorf("popup hides = %d, want 1", renderer.popupHides)
	}
}

func TestOverlayTranslationFailureStillShowsPopup(t *testing.T) {
	factory := newFakeFactory()
	factory.failOn = map[string]error{"Hello": &EngineError{Message: "boom"}}
	c, renderer, timers, _ := newTestOverlay(factory)

	c.HandleSelection("Hello", anchor)
	timers.fireLast()
	c.HandleIconClick(context.Background())

	if c.State() != OverlayPopupShown {
		t.Errorf("state = %v, want popup-shown (errors render in the popup)", c.State())
	}
	if len(renderer.popups) != 1 || renderer.popupErrs[0] == nil {
		t.Error("popup should carry the translation error")
	}
}
