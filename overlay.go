package pageglot

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Overlay defaults. SettleDelay lets the native selection settle before
// the icon shows; DismissGrace keeps the click that opened a popup from
// also closing it.
const (
	DefaultSettleDelay  = 100 * time.Millisecond
	DefaultDismissGrace = 800 * time.Millisecond
)

// OverlayState is the selection icon/popup lifecycle state.
type OverlayState int

const (
	OverlayNoSelection OverlayState = iota
	OverlayIconShown
	OverlayAwaitingTranslation
	OverlayPopupShown
)

func (s OverlayState) String() string {
	switch s {
	case OverlayIconShown:
		return "icon-shown"
	case OverlayAwaitingTranslation:
		return "awaiting-translation"
	case OverlayPopupShown:
		return "popup-shown"
	}
	return "no-selection"
}

// OverlayRenderer performs the UI side effects of the overlay state
// machine. The host embedding renders real DOM; tests record calls.
type OverlayRenderer interface {
	ShowIcon(at Rect)
	HideIcon()
	ShowPopup(at Rect, result TranslationResult, err error)
	HidePopup()
	ShowToast(message string)
}

// OverlayController manages the transient icon-then-popup lifecycle for
// ad-hoc text selection as an explicit state machine with guarded
// transitions, rather than boolean flags scattered across handlers.
//
// Guards that carry the correctness weight: clearing the selection
// hides the icon only while no popup is open (clicking the icon itself
// transiently clears the native selection), and outside-click/scroll
// dismissal is inert for DismissGrace after the popup opens.
type OverlayController struct {
	gw       *Gateway
	renderer OverlayRenderer
	target   func() string
	log      zerolog.Logger

	maxLen       int
	settleDelay  time.Duration
	dismissGrace time.Duration
	afterFunc    func(d time.Duration, fn func()) stopper
	now          func() time.Time

	mu          sync.Mutex
	state       OverlayState
	text        string
	anchor      Rect
	settleTimer stopper
	inFlight    bool
	popupAt     time.Time
}

// OverlayOption is a functional option for configuring the controller.
type OverlayOption func(*OverlayController)

// WithSelectionMaxLen overrides the selection length cap.
func WithSelectionMaxLen(n int) OverlayOption {
	return func(c *OverlayController) {
		c.maxLen = n
	}
}

// WithSettleDelay overrides the selection settle debounce.
func WithSettleDelay(d time.Duration) OverlayOption {
	return func(c *OverlayController) {
		c.settleDelay = d
	}
}

// WithDismissGrace overrides the popup dismissal grace period.
func WithDismissGrace(d time.Duration) OverlayOption {
	return func(c *OverlayController) {
		c.dismissGrace = d
	}
}

// WithTargetLanguage sets the source of the panel's configured target
// language, read at click time.
func WithTargetLanguage(fn func() string) OverlayOption {
	return func(c *OverlayController) {
		c.target = fn
	}
}

// WithOverlayLogger sets the logger.
func WithOverlayLogger(log zerolog.Logger) OverlayOption {
	return func(c *OverlayController) {
		c.log = log
	}
}

// NewOverlayController creates the selection overlay state machine.
func NewOverlayController(gw *Gateway, renderer OverlayRenderer, opts ...OverlayOption) *OverlayController {
	c := &OverlayController{
		gw:           gw,
		renderer:     renderer,
		target:       func() string { return DefaultFallbackLanguage },
		log:          zerolog.Nop(),
		maxLen:       DefaultSelectionMaxLen,
		settleDelay:  DefaultSettleDelay,
		dismissGrace: DefaultDismissGrace,
		now:          time.Now,
	}
	c.afterFunc = func(d time.Duration, fn func()) stopper {
		return time.AfterFunc(d, fn)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *OverlayController) State() OverlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HandleSelection reports a text or keyboard selection. The reaction
// is debounced so the native selection can settle.
func (c *OverlayController) HandleSelection(text string, at Rect) {
	c.mu.Lock()
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	c.settleTimer = c.afterFunc(c.settleDelay, func() {
		c.selectionSettled(text, at)
	})
	c.mu.Unlock()
}

func (c *OverlayController) selectionSettled(text string, at Rect) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		c.HandleSelectionCleared()
		return
	}

	if n := utf8.RuneCountInString(trimmed); n > c.maxLen {
		c.log.Debug().Err(&InputTooLongError{Length: n, Limit: c.maxLen}).Msg("selection rejected")
		c.mu.Lock()
		if c.state == OverlayIconShown {
			c.renderer.HideIcon()
		}
		if c.state != OverlayPopupShown && c.state != OverlayAwaitingTranslation {
			c.state = OverlayNoSelection
		}
		c.mu.Unlock()
		c.renderer.ShowToast("selection too long to translate")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == OverlayPopupShown || c.state == OverlayAwaitingTranslation {
		return
	}
	c.text = trimmed
	c.anchor = at
	c.state = OverlayIconShown
	c.renderer.ShowIcon(at)
}

// HandleSelectionCleared hides the icon, unless a popup is open or a
// translation is in flight: the click that opened the popup can itself
// clear the selection, and hiding then would race-close it.
func (c *OverlayController) HandleSelectionCleared() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == OverlayPopupShown || c.state == OverlayAwaitingTranslation {
		return
	}
	if c.state == OverlayIconShown {
		c.renderer.HideIcon()
	}
	c.state = OverlayNoSelection
}

// HandleIconClick translates the selected text and then shows the
// popup. Selection translation always auto-detects the source,
// regardless of the panel's source preference. The popup is created
// only after the translate call resolves, success or failure, so the
// user never sees a bare loading state. Only one translation is in
// flight at a time.
func (c *OverlayController) HandleIconClick(ctx context.Context) {
	c.mu.Lock()
	if c.state != OverlayIconShown || c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.state = OverlayAwaitingTranslation
	c.renderer.HideIcon()
	text := c.text
	anchor := c.anchor
	c.mu.Unlock()

	result, err := c.gw.SmartTranslate(ctx, text, AutoDetect, c.target())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.state != OverlayAwaitingTranslation {
		// Dismissed while waiting; drop the result.
		return
	}
	c.state = OverlayPopupShown
	c.popupAt = c.now()
	c.renderer.ShowPopup(anchor, result, err)
}

// HandleOutsideClick dismisses the popup, except within the grace
// period after it opened.
func (c *OverlayController) HandleOutsideClick() {
	c.dismissAfterGrace()
}

// HandleScroll dismisses the popup on document scroll, under the same
// grace rule as outside clicks.
func (c *OverlayController) HandleScroll() {
	c.dismissAfterGrace()
}

// HandleCloseClick dismisses the popup immediately.
func (c *OverlayController) HandleCloseClick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != OverlayPopupShown {
		return
	}
	c.renderer.HidePopup()
	c.state = OverlayNoSelection
}

func (c *OverlayController) dismissAfterGrace() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != OverlayPopupShown {
		return
	}
	if c.now().Sub(c.popupAt) < c.dismissGrace {
		return
	}
	c.renderer.HidePopup()
	c.state = OverlayNoSelection
}
