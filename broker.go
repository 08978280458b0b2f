package pageglot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageglot/pageglot/storage"
)

// Context-menu labels. The single menu item toggles between them.
const (
	MenuLabelTranslate = "Translate page"
	MenuLabelCancel    = "Cancel page translation"
)

// Default liveness poll after injecting a content script.
const (
	DefaultPollAttempts = 10
	DefaultPollInterval = 200 * time.Millisecond
)

// ContentTransport delivers messages to a tab's content context.
// Inject (re)installs the content script when the context is missing.
type ContentTransport interface {
	Send(ctx context.Context, tabID int, msg Message) (Response, error)
	Inject(ctx context.Context, tabID int) error
}

// MenuSurface owns the right-click menu item.
type MenuSurface interface {
	SetMenuLabel(tabID int, label string)
}

// StatusEvent is broadcast to panels when a tab's translation state
// changes. Delivery is last-write-wins, in send order.
type StatusEvent struct {
	TabID      int
	Translated bool
}

// Broker is the singular background coordinator. It mirrors each tab's
// page translation state (the content session owns it), keeps the menu
// label consistent, revives missing content
// contexts, and fans state changes out to any number of open panels.
type Broker struct {
	transport ContentTransport
	menu      MenuSurface
	gw        *Gateway
	store     storage.Store
	pollRetry RetryConfig
	log       zerolog.Logger

	mu      sync.Mutex
	state   map[int]bool
	subs    map[int]func(StatusEvent)
	nextSub int
}

// BrokerOption is a functional option for configuring the Broker.
type BrokerOption func(*Broker)

// WithMenu sets the context-menu surface.
func WithMenu(menu MenuSurface) BrokerOption {
	return func(b *Broker) {
		b.menu = menu
	}
}

// WithBrokerGateway sets the gateway used for panel text translation.
func WithBrokerGateway(gw *Gateway) BrokerOption {
	return func(b *Broker) {
		b.gw = gw
	}
}

// WithHistoryStore sets the store that records translation history.
func WithHistoryStore(store storage.Store) BrokerOption {
	return func(b *Broker) {
		b.store = store
	}
}

// WithPollRetry sets the bounded liveness poll after injection.
func WithPollRetry(cfg RetryConfig) BrokerOption {
	return func(b *Broker) {
		b.pollRetry = cfg
	}
}

// WithBrokerLogger sets the logger.
func WithBrokerLogger(log zerolog.Logger) BrokerOption {
	return func(b *Broker) {
		b.log = log
	}
}

// NewBroker creates the background coordinator over a content
// transport.
func NewBroker(transport ContentTransport, opts ...BrokerOption) *Broker {
	b := &Broker{
		transport: transport,
		pollRetry: FixedRetryConfig(DefaultPollAttempts, DefaultPollInterval),
		log:       zerolog.Nop(),
		state:     make(map[int]bool),
		subs:      make(map[int]func(StatusEvent)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnTabActivated refreshes the menu label from the tab's live state.
// An unreachable content context defaults the label to "Translate
// page"; injection is deferred until the user actually acts.
func (b *Broker) OnTabActivated(ctx context.Context, tabID int) {
	resp, err := b.transport.Send(ctx, tabID, NewMessage(MsgGetStatus))
	if err != nil || !resp.Success {
		b.log.Debug().Int("tab", tabID).Msg("content context unreachable, defaulting menu")
		b.setState(tabID, false)
		return
	}
	b.setState(tabID, resp.IsTranslated)
}

// ping probes content-context liveness.
func (b *Broker) ping(ctx context.Context, tabID int) error {
	resp, err := b.transport.Send(ctx, tabID, NewMessage(MsgPing))
	if err != nil {
		return &MessagingError{TabID: tabID, Message: "ping failed", Cause: err, Retryable: true}
	}
	if !resp.Success {
		return &MessagingError{TabID: tabID, Message: "ping rejected", Retryable: true}
	}
	return nil
}

// ensureContent makes sure the tab has a responsive content context:
// ping, then inject and poll with bounded retries. Exhaustion is
// terminal ("refresh the page"), surfaced once, never retried again
// inside the same operation.
func (b *Broker) ensureContent(ctx context.Context, tabID int) error {
	if err := b.ping(ctx, tabID); err == nil {
		return nil
	}

	if err := b.transport.Inject(ctx, tabID); err != nil {
		return &MessagingError{
			TabID:   tabID,
			Message: "translation is not available on this page",
			Cause:   err,
		}
	}

	_, err := WithRetry(ctx, b.pollRetry, func() (struct{}, error) {
		return struct{}{}, b.ping(ctx, tabID)
	})
	if err != nil {
		return &MessagingError{
			TabID:   tabID,
			Message: "content context unresponsive, refresh the page",
			Cause:   err,
		}
	}
	return nil
}

// TranslatePage commands a full sweep in the tab, reviving the content
// context first if needed.
func (b *Broker) TranslatePage(ctx context.Context, tabID int, prefs LanguagePreference) (Response, error) {
	if err := b.ensureContent(ctx, tabID); err != nil {
		return Response{}, err
	}

	msg := NewMessage(MsgTranslatePage)
	msg.SourceLanguage = prefs.SourceLanguage
	msg.TargetLanguage = prefs.TargetLanguage

	resp, err := b.transport.Send(ctx, tabID, msg)
	if err != nil {
		return Response{}, &MessagingError{TabID: tabID, Message: "translate command failed", Cause: err}
	}
	if resp.Success && resp.TranslatedCount > 0 {
		b.setState(tabID, true)
	}
	return resp, nil
}

// CancelPage commands the tab to cancel its page translation.
func (b *Broker) CancelPage(ctx context.Context, tabID int) (Response, error) {
	if err := b.ensureContent(ctx, tabID); err != nil {
		return Response{}, err
	}

	resp, err := b.transport.Send(ctx, tabID, NewMessage(MsgCancelTranslatePage))
	if err != nil {
		return Response{}, &MessagingError{TabID: tabID, Message: "cancel command failed", Cause: err}
	}
	if resp.Success {
		b.setState(tabID, false)
	}
	return resp, nil
}

// Toggle runs the menu/popup action: cancel when the tab is translated,
// translate otherwise.
func (b *Broker) Toggle(ctx context.Context, tabID int, prefs LanguagePreference) (Response, error) {
	if err := b.ensureContent(ctx, tabID); err != nil {
		return Response{}, err
	}

	status, err := b.transport.Send(ctx, tabID, NewMessage(MsgGetStatus))
	if err != nil {
		return Response{}, &MessagingError{TabID: tabID, Message: "status query failed", Cause: err}
	}

	if status.IsTranslated {
		return b.CancelPage(ctx, tabID)
	}
	return b.TranslatePage(ctx, tabID, prefs)
}

// TranslateText translates panel text through the broker's gateway and
// records the result in the translation history.
func (b *Broker) TranslateText(ctx context.Context, text string, prefs LanguagePreference) (TranslationResult, error) {
	if b.gw == nil {
		return TranslationResult{}, &CapabilityError{Capability: "translation"}
	}

	result, err := b.gw.SmartTranslate(ctx, text, prefs.SourceLanguage, prefs.TargetLanguage)
	if err != nil {
		return result, err
	}

	if b.store != nil {
		entry := storage.HistoryEntry{
			SourceText:     text,
			ResultText:     result.Text,
			SourceLanguage: result.ResolvedSource,
			TargetLanguage: result.ResolvedTarget,
			At:             time.Now(),
		}
		if err := b.store.AppendHistory(ctx, entry); err != nil {
			b.log.Warn().Err(err).Msg("failed to record translation history")
		}
	}

	return result, nil
}

// SelectedText fetches the tab's current selection.
func (b *Broker) SelectedText(ctx context.Context, tabID int) (string, bool, error) {
	if err := b.ensureContent(ctx, tabID); err != nil {
		return "", false, err
	}

	resp, err := b.transport.Send(ctx, tabID, NewMessage(MsgGetSelectedText))
	if err != nil {
		return "", false, &MessagingError{TabID: tabID, Message: "selection query failed", Cause: err}
	}
	return resp.Text, resp.HasSelection, nil
}

// State returns the mirrored translation state for a tab.
func (b *Broker) State(tabID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state[tabID]
}

// Subscribe registers a panel listener for state changes and returns
// its unsubscribe function.
func (b *Broker) Subscribe(fn func(StatusEvent)) func() {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// setState updates the mirror, the menu label, and broadcasts to
// panels on change.
func (b *Broker) setState(tabID int, translated bool) {
	b.mu.Lock()
	prev, known := b.state[tabID]
	b.state[tabID] = translated
	subs := make([]func(StatusEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	if b.menu != nil {
		label := MenuLabelTranslate
		if translated {
			label = MenuLabelCancel
		}
		b.menu.SetMenuLabel(tabID, label)
	}

	if known && prev == translated {
		return
	}
	event := StatusEvent{TabID: tabID, Translated: translated}
	for _, fn := range subs {
		fn(event)
	}
}
