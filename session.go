package pageglot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Session defaults.
const (
	DefaultFragmentDelay  = 150 * time.Millisecond
	DefaultScrollDebounce = 250 * time.Millisecond
)

// ErrSweepInProgress is returned when a full sweep is started while
// another sweep is running.
var ErrSweepInProgress = errors.New("pageglot: sweep already in progress")

// StatusSink receives page-state transitions, typically relayed to the
// background coordinator.
type StatusSink interface {
	PageStateChanged(translated bool)
}

// ProgressSink receives sweep lifecycle events for the user-facing
// surface (progress banner, toasts).
type ProgressSink interface {
	SweepStarted(total int)
	SweepProgress(done, total int)
	SweepFinished(result SweepResult)
	Notify(message string)
}

type nopStatus struct{}

func (nopStatus) PageStateChanged(bool) {}

type nopProgress struct{}

func (nopProgress) SweepStarted(int)          {}
func (nopProgress) SweepProgress(int, int)    {}
func (nopProgress) SweepFinished(SweepResult) {}
func (nopProgress) Notify(string)             {}

// stopper abstracts time.AfterFunc timers for the scroll debounce.
type stopper interface {
	Stop() bool
}

// Session coordinates page translation for one document: fragment
// discovery, the sequential translate loop, annotation state, the
// scroll-triggered incremental rescan and the translated/untranslated
// flag. Annotation state lives in a side map keyed by fragment id; DOM
// mutation is a rendering effect of that map.
type Session struct {
	doc      *goquery.Document
	gw       *Gateway
	sel      *Selector
	geo      Geometry
	status   StatusSink
	progress ProgressSink
	log      zerolog.Logger

	fragmentDelay  time.Duration
	scrollDebounce time.Duration
	afterFunc      func(d time.Duration, fn func()) stopper

	mu          sync.Mutex
	state       PageState
	vp          Viewport
	prefs       LanguagePreference
	hasPrefs    bool
	annotations map[int]Annotation
	cancelSweep context.CancelFunc
	scrollTimer stopper
}

// SessionOption is a functional option for configuring the Session.
type SessionOption func(*Session)

// WithSelector sets the fragment selector.
func WithSelector(sel *Selector) SessionOption {
	return func(s *Session) {
		s.sel = sel
	}
}

// WithGeometry sets the layout geometry used for visibility checks.
// Without one, every fragment counts as visible.
func WithGeometry(geo Geometry) SessionOption {
	return func(s *Session) {
		s.geo = geo
	}
}

// WithViewport sets the initial viewport.
func WithViewport(vp Viewport) SessionOption {
	return func(s *Session) {
		s.vp = vp
	}
}

// WithStatusSink sets the page-state listener.
func WithStatusSink(sink StatusSink) SessionOption {
	return func(s *Session) {
		s.status = sink
	}
}

// WithProgressSink sets the sweep progress listener.
func WithProgressSink(sink ProgressSink) SessionOption {
	return func(s *Session) {
		s.progress = sink
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// WithFragmentDelay sets the pause between fragment translations.
func WithFragmentDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		s.fragmentDelay = d
	}
}

// WithScrollDebounce sets the quiet period after the last scroll event
// before the incremental sweep runs.
func WithScrollDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.scrollDebounce = d
	}
}

// NewSession attaches a session to a document. If the document already
// carries annotation markers from a previous content-script instance,
// the session reconciles to Translated instead of assuming Idle.
func NewSession(doc *goquery.Document, gw *Gateway, opts ...SessionOption) *Session {
	s := &Session{
		doc:            doc,
		gw:             gw,
		status:         nopStatus{},
		progress:       nopProgress{},
		log:            zerolog.Nop(),
		fragmentDelay:  DefaultFragmentDelay,
		scrollDebounce: DefaultScrollDebounce,
		annotations:    make(map[int]Annotation),
	}
	s.afterFunc = func(d time.Duration, fn func()) stopper {
		return time.AfterFunc(d, fn)
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sel == nil {
		s.sel = NewSelector()
	}

	if HasAnnotations(doc) {
		s.state = StateTranslated
		s.status.PageStateChanged(true)
	}

	return s
}

// State returns the current page translation state.
func (s *Session) State() PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Translated reports whether the page currently counts as translated.
func (s *Session) Translated() bool {
	return s.State() == StateTranslated
}

// StartFullSweep discovers the currently visible fragments and
// translates them sequentially. The capability check runs once before
// the loop so a missing engine produces a single failure instead of
// one per fragment. Returns the sweep outcome; cancellation mid-sweep
// is not an error.
func (s *Session) StartFullSweep(ctx context.Context, prefs LanguagePreference) (SweepResult, error) {
	s.mu.Lock()
	if s.state == StateSweeping {
		s.mu.Unlock()
		return SweepResult{}, ErrSweepInProgress
	}
	if !s.gw.IsTranslationAvailable() {
		s.mu.Unlock()
		return SweepResult{}, &CapabilityError{Capability: "translation"}
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancelSweep = cancel
	s.prefs = prefs
	s.hasPrefs = true
	s.state = StateSweeping
	vp := s.vp
	s.mu.Unlock()

	frags := s.sel.CollectVisible(s.doc, s.geo, vp)
	if len(frags) == 0 {
		s.progress.Notify("nothing to translate")
		s.mu.Lock()
		if s.state == StateSweeping {
			s.state = StateIdle
		}
		s.mu.Unlock()
		return SweepResult{}, nil
	}

	s.progress.SweepStarted(len(frags))
	res := s.translateFragments(sweepCtx, frags, prefs)

	translated := false
	s.mu.Lock()
	if s.state == StateSweeping {
		if res.Translated > 0 {
			s.state = StateTranslated
			translated = true
		} else {
			s.state = StateIdle
		}
	}
	s.mu.Unlock()

	if translated {
		s.status.PageStateChanged(true)
	}
	s.progress.SweepFinished(res)
	return res, nil
}

// translateFragments is the single translate loop shared by the full
// sweep and the scroll-triggered incremental sweep. Sequential on
// purpose: one in-flight engine call, meaningful progress, paced DOM
// writes. The cancellation token is checked at each iteration boundary
// and again after each engine resolve so a result arriving after
// Cancel is discarded, never annotated.
func (s *Session) translateFragments(ctx context.Context, frags []TranslatableFragment, prefs LanguagePreference) SweepResult {
	res := SweepResult{Total: len(frags)}

	for i, frag := range frags {
		if ctx.Err() != nil {
			res.Skipped = len(frags) - i
			return res
		}

		// Source resolution happens per fragment inside SmartTranslate;
		// mixed-language pages are expected, so detection is not
		// hoisted above the loop.
		result, err := s.gw.SmartTranslate(ctx, frag.Text, prefs.SourceLanguage, prefs.TargetLanguage)

		if ctx.Err() != nil {
			res.Skipped = len(frags) - i
			return res
		}

		ann := Annotation{Kind: AnnotationTranslated, Text: result.Text}
		if err != nil || result.Text == frag.Text {
			// Failure, or an identity result from a real attempt.
			ann = Annotation{Kind: AnnotationFailed}
			res.Failed++
			if err != nil {
				s.log.Warn().Err(err).Int("fragment", frag.ID).Msg("fragment translation failed")
			}
		} else {
			res.Translated++
		}

		s.mu.Lock()
		if s.state == StateSweeping || s.state == StateTranslated {
			s.annotations[frag.ID] = ann
			RenderAnnotation(frag, ann)
		}
		s.mu.Unlock()

		s.progress.SweepProgress(i+1, len(frags))

		if i < len(frags)-1 && s.fragmentDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.fragmentDelay):
			}
		}
	}

	return res
}

// Cancel removes every annotation, detaches the scroll rescan and
// returns the session to Idle. Idempotent: cancelling an Idle session
// is a no-op. An in-flight sweep observes the cancellation at its next
// iteration boundary.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	if s.cancelSweep != nil {
		s.cancelSweep()
		s.cancelSweep = nil
	}
	if s.scrollTimer != nil {
		s.scrollTimer.Stop()
		s.scrollTimer = nil
	}
	removed := RemoveAnnotations(s.doc)
	s.annotations = make(map[int]Annotation)
	s.state = StateIdle
	s.mu.Unlock()

	s.log.Debug().Int("removed", removed).Msg("page translation cancelled")
	s.status.PageStateChanged(false)
	s.progress.Notify("page translation cancelled")
}

// HandleScroll records the new viewport and, while the page is
// translated, schedules a debounced incremental sweep over newly
// visible, unannotated fragments.
func (s *Session) HandleScroll(vp Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vp = vp
	if s.state != StateTranslated || !s.hasPrefs {
		return
	}
	if s.scrollTimer != nil {
		s.scrollTimer.Stop()
	}
	s.scrollTimer = s.afterFunc(s.scrollDebounce, s.incrementalSweep)
}

// incrementalSweep translates fragments that scrolled into view,
// through the same loop (and thus the same pacing and failure policy)
// as the full sweep.
func (s *Session) incrementalSweep() {
	s.mu.Lock()
	if s.state != StateTranslated || !s.hasPrefs {
		s.mu.Unlock()
		return
	}
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.cancelSweep = cancel
	prefs := s.prefs
	vp := s.vp
	s.mu.Unlock()

	// Already-annotated fragments are excluded by the selector.
	frags := s.sel.CollectVisible(s.doc, s.geo, vp)
	if len(frags) == 0 {
		return
	}

	res := s.translateFragments(sweepCtx, frags, prefs)
	s.log.Debug().
		Int("total", res.Total).
		Int("translated", res.Translated).
		Int("failed", res.Failed).
		Msg("incremental sweep finished")
}

// Annotations returns a copy of the annotation state map, keyed by
// fragment id.
func (s *Session) Annotations() map[int]Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]Annotation, len(s.annotations))
	for id, ann := range s.annotations {
		out[id] = ann
	}
	return out
}
