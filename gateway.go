package pageglot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBatchDelay is the pause between items of a batch. Pacing, not
// correctness: it keeps the host engine from being hammered.
const DefaultBatchDelay = 150 * time.Millisecond

// DefaultFallbackLanguage is returned when detection fails or is
// unavailable. Detection failure must never block translation.
const DefaultFallbackLanguage = "en"

// Gateway wraps the host translation and language-identification
// capabilities. It owns lazily created engine instances (bounded LRU by
// language pair), the shared detector instance, optional result caching
// and call pacing. All other components translate through SmartTranslate.
type Gateway struct {
	factory         EngineFactory
	detectorFactory DetectorFactory
	cache           TranslationCache
	pacer           *Pacer
	pool            *enginePool
	fallback        string
	batchDelay      time.Duration
	downloadRetry   RetryConfig
	log             zerolog.Logger

	detMu    sync.Mutex
	detector Detector
}

// GatewayOption is a functional option for configuring the Gateway.
type GatewayOption func(*Gateway)

// WithDetectorFactory sets the language-identification capability.
func WithDetectorFactory(f DetectorFactory) GatewayOption {
	return func(g *Gateway) {
		g.detectorFactory = f
	}
}

// WithCache sets the translation-result cache.
func WithCache(c TranslationCache) GatewayOption {
	return func(g *Gateway) {
		g.cache = c
	}
}

// WithPacer sets the engine call pacer.
func WithPacer(p *Pacer) GatewayOption {
	return func(g *Gateway) {
		g.pacer = p
	}
}

// WithPoolSize bounds the number of live engine instances.
func WithPoolSize(n int) GatewayOption {
	return func(g *Gateway) {
		g.pool = newEnginePool(n)
	}
}

// WithFallbackLanguage sets the tag returned when detection fails.
func WithFallbackLanguage(tag string) GatewayOption {
	return func(g *Gateway) {
		g.fallback = tag
	}
}

// WithBatchDelay sets the inter-item delay of BatchTranslate.
func WithBatchDelay(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.batchDelay = d
	}
}

// WithDownloadRetry sets the retry policy for engine model downloads.
func WithDownloadRetry(cfg RetryConfig) GatewayOption {
	return func(g *Gateway) {
		g.downloadRetry = cfg
	}
}

// WithGatewayLogger sets the logger.
func WithGatewayLogger(log zerolog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = log
	}
}

// NewGateway creates a Gateway over the host translation capability.
// A nil factory is allowed and makes every translation fail with a
// CapabilityError.
func NewGateway(factory EngineFactory, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		factory:       factory,
		fallback:      DefaultFallbackLanguage,
		batchDelay:    DefaultBatchDelay,
		downloadRetry: DefaultRetryConfig(),
		log:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.pool == nil {
		g.pool = newEnginePool(DefaultEnginePoolSize)
	}

	return g
}

// IsTranslationAvailable reports whether the host translation
// capability is present.
func (g *Gateway) IsTranslationAvailable() bool {
	return g.factory != nil
}

// IsDetectionAvailable reports whether the host language-identification
// capability is present.
func (g *Gateway) IsDetectionAvailable() bool {
	return g.detectorFactory != nil
}

// Availability probes engine readiness for a language pair without
// triggering a download.
func (g *Gateway) Availability(ctx context.Context, source, target string) (Availability, error) {
	if g.factory == nil {
		return Unavailable, nil
	}
	return g.factory.Probe(ctx, source, target)
}

// DetectLanguage identifies the language of text. It never fails: on
// any error, absence of the capability, or an empty ranking it returns
// the fallback tag. Failures are logged, not surfaced.
func (g *Gateway) DetectLanguage(ctx context.Context, text string) string {
	det, err := g.ensureDetector(ctx)
	if err != nil {
		g.log.Debug().Err(&DetectionError{Cause: err}).Msg("detector unavailable, using fallback")
		return g.fallback
	}

	candidates, err := det.Detect(ctx, text)
	if err != nil {
		g.log.Debug().Err(&DetectionError{Cause: err}).Msg("detection failed, using fallback")
		return g.fallback
	}
	if len(candidates) == 0 || candidates[0].Tag == "" {
		return g.fallback
	}
	return candidates[0].Tag
}

// ensureDetector lazily creates and reuses one detector instance.
func (g *Gateway) ensureDetector(ctx context.Context) (Detector, error) {
	g.detMu.Lock()
	defer g.detMu.Unlock()

	if g.detector != nil {
		return g.detector, nil
	}
	if g.detectorFactory == nil {
		return nil, &CapabilityError{Capability: "detection"}
	}

	det, err := g.detectorFactory.Create(ctx)
	if err != nil {
		return nil, err
	}
	g.detector = det
	return det, nil
}

// Translate translates text with an engine for the exact language pair,
// creating (and, if needed, downloading) the engine on first use.
func (g *Gateway) Translate(ctx context.Context, text, source, target string) (string, error) {
	eng, err := g.ensureEngine(ctx, source, target)
	if err != nil {
		return "", err
	}

	if g.pacer != nil {
		if err := g.pacer.Wait(ctx); err != nil {
			return "", err
		}
	}

	out, err := eng.Translate(ctx, text)
	if err != nil {
		var engineErr *EngineError
		if errors.As(err, &engineErr) {
			return "", err
		}
		return "", &EngineError{Message: "translate call failed", Cause: err}
	}
	return out, nil
}

// ensureEngine returns the pooled engine for the pair or creates one.
// Download states are handled here: creation is retried for transient
// failures and progress is logged.
func (g *Gateway) ensureEngine(ctx context.Context, source, target string) (Engine, error) {
	if g.factory == nil {
		return nil, &CapabilityError{Capability: "translation"}
	}

	key := PairKey(source, target)
	if eng, ok := g.pool.get(key); ok {
		return eng, nil
	}

	avail, err := g.factory.Probe(ctx, source, target)
	if err != nil {
		return nil, &EngineError{Message: "availability probe failed", Cause: err}
	}
	if avail == Unavailable {
		return nil, &CapabilityError{Capability: "translation"}
	}

	progress := func(fraction float64) {
		g.log.Debug().
			Str("pair", key).
			Float64("fraction", fraction).
			Msg("engine model download progress")
	}

	eng, err := WithRetry(ctx, g.downloadRetry, func() (Engine, error) {
		return g.factory.Create(ctx, source, target, progress)
	})
	if err != nil {
		return nil, err
	}

	g.pool.put(key, eng)
	return eng, nil
}

// SmartTranslate is the canonical translation entry point. It resolves
// AutoDetect sources, then short-circuits when source and target share
// a primary subtag: same-language "translation" is identity and must
// not reach the cache or the engine. Otherwise it consults the result
// cache and translates on a miss.
func (g *Gateway) SmartTranslate(ctx context.Context, text, source, target string) (TranslationResult, error) {
	resolved := source
	if source == AutoDetect {
		resolved = g.DetectLanguage(ctx, text)
	}

	result := TranslationResult{
		Text:           text,
		ResolvedSource: resolved,
		ResolvedTarget: target,
	}

	if SameLanguage(resolved, target) {
		result.Identity = true
		return result, nil
	}

	key := CacheKey(HashText(text), resolved, target)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			result.Text = cached
			return result, nil
		}
	}

	out, err := g.Translate(ctx, text, resolved, target)
	if err != nil {
		return result, err
	}

	result.Text = out
	if g.cache != nil {
		_ = g.cache.Set(key, out) // cache write failures are not the caller's problem
	}
	return result, nil
}

// BatchTranslate applies SmartTranslate to each text sequentially with
// the configured inter-item delay. A failed item falls back to its
// original text and the loop continues; one bad item never aborts the
// batch. Capability absence is detected once, up front.
func (g *Gateway) BatchTranslate(ctx context.Context, texts []string, source, target string, onProgress func(done, total int)) ([]TranslationResult, error) {
	if g.factory == nil {
		return nil, &CapabilityError{Capability: "translation"}
	}

	results := make([]TranslationResult, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := g.SmartTranslate(ctx, text, source, target)
		if err != nil {
			g.log.Warn().Err(err).Int("index", i).Msg("batch item failed, keeping original text")
			result.Text = text
		}
		results = append(results, result)

		if onProgress != nil {
			onProgress(i+1, len(texts))
		}

		if i < len(texts)-1 && g.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(g.batchDelay):
			}
		}
	}

	return results, nil
}

// Close releases all pooled engine instances.
func (g *Gateway) Close() {
	g.pool.purge()
}
