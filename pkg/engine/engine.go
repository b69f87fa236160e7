// Package engine coordinates the scope parsing pipeline: grammar lookup,
// lexical tracking, scope matching, header inference, decoration
// generation, and the layered caches in front of all of it.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastndev/bracketlens/internal/logging"
	"github.com/bastndev/bracketlens/pkg/cache"
	"github.com/bastndev/bracketlens/pkg/config"
	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
	"github.com/bastndev/bracketlens/pkg/scope"
)

// ParseFunc is a full-document parser. The engine's fallback parser has
// this shape and is injected at construction; the engine is always
// constructible with a working fallback.
type ParseFunc func(doc *document.Document, g *grammar.Grammar) []*scope.Entry

// DocumentResult is the cached per-document output: the scope tree and
// the decoration anchors derived from it.
type DocumentResult struct {
	Entries []*scope.Entry
	Anchors []scope.DecorationAnchor
}

// Options configures a new Engine. Zero-value fields select defaults.
type Options struct {
	// Config supplies the engine limits; nil selects config.Default().
	Config *config.Config

	// Grammars supplies the grammar set; nil selects the built-ins.
	Grammars *grammar.Set

	// Logger receives structured engine logs; nil selects the default.
	Logger *log.Logger

	// Fallback is the designated fallback parser used when the main
	// parse path fails; nil selects scope.FallbackParse.
	Fallback ParseFunc

	// Notify surfaces memory-pressure advisories; may be nil.
	Notify func(tier cache.PressureTier)
}

// Engine owns the caches and exposes the parse operations. All caches are
// explicitly constructed and dependency-injected here rather than being
// process-wide singletons, so engines can be created and disposed in
// isolation.
type Engine struct {
	mu       sync.RWMutex
	cfg      *config.Config
	grammars *grammar.Set
	log      *log.Logger
	fallback ParseFunc

	parseStates *cache.Cache[*scope.Tracker]
	tokens      *cache.Cache[[]scope.Token]
	results     *cache.Cache[*DocumentResult]
	editors     *cache.EditorCache

	sweeper *cache.Sweeper
	monitor *cache.Monitor
	sched   *scheduler
	watcher *configWatcher
}

// New creates an Engine with its caches, sweeper, and memory monitor.
// Background loops are not started until Start.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	grammars := opts.Grammars
	if grammars == nil {
		grammars = grammar.NewBuiltinSet()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = scope.FallbackParse
	}

	e := &Engine{
		cfg:      cfg,
		grammars: grammars,
		log:      logger,
		fallback: fallback,

		parseStates: cache.New[*scope.Tracker]("parse_states",
			cfg.ParseStateCache.Capacity, cfg.ParseStateCache.TTL),
		tokens: cache.New[[]scope.Token]("tokens",
			cfg.TokenCache.Capacity, cfg.TokenCache.TTL),
		results: cache.New[*DocumentResult]("results",
			cfg.ResultCache.Capacity, cfg.ResultCache.TTL),
		editors: cache.NewEditorCache(cfg.EditorCache.Capacity, cfg.EditorCache.TTL),
	}

	e.sweeper = cache.NewSweeper(cfg.Memory.SweepInterval,
		e.parseStates, e.tokens, e.results, e.editors)
	e.monitor = cache.NewMonitor(
		cache.Thresholds{
			Medium:   cfg.Memory.MediumBytes,
			High:     cfg.Memory.HighBytes,
			Critical: cfg.Memory.CriticalBytes,
		},
		cfg.Memory.CheckInterval,
		opts.Notify,
		e.parseStates, e.tokens, e.results, e.editors,
	)
	e.sched = newScheduler(cfg.DebounceBase, cfg.DebounceMax)

	return e
}

// Start launches the background sweep and memory-monitor loops.
func (e *Engine) Start() {
	e.sweeper.Start()
	e.monitor.Start()
}

// Close stops background loops, cancels pending renders, and releases
// every editor's render handle.
func (e *Engine) Close() error {
	e.sweeper.Stop()
	e.monitor.Stop()
	e.sched.stopAll()
	if e.watcher != nil {
		e.watcher.stop()
	}
	e.ClearAll()
	return nil
}

// Config returns the engine's current configuration.
func (e *Engine) Config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Parse builds the full scope tree for a document.
//
// Oversized documents return an empty tree. A panic anywhere along the
// main parse path is logged and answered with the fallback parser's
// result rather than propagating; the caller never sees a partial state.
func (e *Engine) Parse(doc *document.Document) []*scope.Entry {
	cfg := e.Config()
	if cfg.MaxFileSize > 0 && len(doc.Content) > cfg.MaxFileSize {
		e.log.Debug("document exceeds size cutoff, skipping parse",
			logging.FieldDocument, doc.Key(),
			logging.FieldBytes, len(doc.Content))
		return nil
	}

	g, pattern := e.grammars.Lookup(doc.LanguageID)

	entries, err := e.parseGuarded(doc, g, pattern, cfg)
	if err != nil {
		e.log.Warn("parse failed, using fallback parser",
			logging.FieldDocument, doc.Key(),
			logging.FieldError, err)
		return e.fallback(doc, g)
	}
	return entries
}

// parseGuarded runs the main parse path with panic recovery.
func (e *Engine) parseGuarded(doc *document.Document, g *grammar.Grammar, pattern *grammar.Pattern, cfg *config.Config) (entries []*scope.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries = nil
			err = fmt.Errorf("parse panic: %v", r)
		}
	}()

	tracker := e.trackerFor(doc, g, cfg)
	tokens := e.tokensFor(doc, pattern)

	return scope.Match(doc, g, tokens, tracker), nil
}

// trackerFor returns the document's lexical-state tracker, from cache
// when the fingerprint matches.
func (e *Engine) trackerFor(doc *document.Document, g *grammar.Grammar, cfg *config.Config) *scope.Tracker {
	key := doc.Key()
	if tracker, ok := e.parseStates.Get(key, doc.Fingerprint()); ok {
		return tracker
	}

	tracker := scope.Track(doc.Content, g, cfg.SnapshotInterval)
	e.parseStates.Set(key, tracker, doc.Fingerprint(), tracker.SizeBytes())
	return tracker
}

// tokenSizeEstimate is the per-token size heuristic for the token cache.
const tokenSizeEstimate = 24

// tokensFor returns the document's candidate token stream, from cache
// when the fingerprint matches. The language id is part of the key: the
// same content under a different grammar scans differently.
func (e *Engine) tokensFor(doc *document.Document, pattern *grammar.Pattern) []scope.Token {
	key := doc.Key() + "|" + doc.LanguageID
	if tokens, ok := e.tokens.Get(key, doc.Fingerprint()); ok {
		return tokens
	}

	tokens := scope.Scan(doc.Content, pattern)
	e.tokens.Set(key, tokens, doc.Fingerprint(), len(tokens)*tokenSizeEstimate)
	return tokens
}

// ParseIncremental updates a previous parse for a set of edits,
// re-deriving only the affected regions. Any failure on the incremental
// path degrades to a full re-parse of the same document; the caller never
// sees an error.
func (e *Engine) ParseIncremental(doc *document.Document, changes []scope.Change, previous []*scope.Entry) *scope.IncrementalResult {
	// The text changed; lexical states and tokens are recomputed lazily
	// on next access.
	e.invalidateDerived(doc)

	g, pattern := e.grammars.Lookup(doc.LanguageID)

	result, err := scope.Reparse(doc, g, pattern, changes, previous)
	if err != nil {
		e.log.Warn("incremental reparse failed, re-parsing fully",
			logging.FieldDocument, doc.Key(),
			logging.FieldError, err)
		return &scope.IncrementalResult{Entries: e.Parse(doc)}
	}

	e.log.Debug("incremental reparse",
		logging.FieldDocument, doc.Key(),
		logging.FieldRegions, len(result.AffectedRegions),
		logging.FieldScopes, len(result.Entries),
		logging.FieldElapsed, result.Elapsed)

	return result
}

// DecorationSource derives the flat decoration list from a scope tree
// under the current configuration.
func (e *Engine) DecorationSource(doc *document.Document, entries []*scope.Entry) []scope.DecorationAnchor {
	cfg := e.Config()
	g, _ := e.grammars.Lookup(doc.LanguageID)

	return scope.Decorations(doc, g, entries, scope.DecorationOptions{
		MinScopeLines:   cfg.EffectiveMinScopeLines(),
		MaxDecorations:  cfg.EffectiveMaxDecorations(),
		MaxHeaderLength: cfg.MaxHeaderLength,
		MaxDepth:        cfg.MaxNestingDepth,
		FilterEnabled:   cfg.MaxDecorations > 0,
		Prefix:          cfg.Prefix,
		UnmatchedPrefix: cfg.UnmatchedPrefix,
		Separator:       cfg.Separator,
	})
}

// Annotate runs the full pipeline for a document, consulting the
// per-document result cache first.
func (e *Engine) Annotate(doc *document.Document) *DocumentResult {
	key := doc.Key()
	if result, ok := e.results.Get(key, doc.Fingerprint()); ok {
		return result
	}

	entries := e.Parse(doc)
	result := &DocumentResult{
		Entries: entries,
		Anchors: e.DecorationSource(doc, entries),
	}

	e.results.Set(key, result, doc.Fingerprint(),
		scope.SizeBytes(entries)+len(result.Anchors)*anchorSizeEstimate)
	return result
}

// anchorSizeEstimate is the per-anchor size heuristic for the result
// cache.
const anchorSizeEstimate = 64

// Schedule arms a debounced re-parse callback for one editor. A newer
// call with the same editor key supersedes the pending one. The delay
// grows with document size and doubles when the editor is unfocused;
// the delay actually used is returned.
func (e *Engine) Schedule(editorKey string, doc *document.Document, focused bool, fn func()) time.Duration {
	return e.sched.schedule(editorKey, len(doc.Content), focused, fn)
}

// CancelScheduled drops any pending re-parse for the editor, reporting
// whether one was pending.
func (e *Engine) CancelScheduled(editorKey string) bool {
	return e.sched.cancel(editorKey)
}

// Editors exposes the per-editor state cache.
func (e *Engine) Editors() *cache.EditorCache {
	return e.editors
}

// ClearAll empties every cache, releasing editor render handles.
func (e *Engine) ClearAll() {
	e.parseStates.Clear()
	e.tokens.Clear()
	e.results.Clear()
	e.editors.Clear()
}

// ClearForDocument drops all cached state for one document key.
func (e *Engine) ClearForDocument(doc *document.Document) {
	e.invalidateDerived(doc)
}

func (e *Engine) invalidateDerived(doc *document.Document) {
	e.parseStates.Invalidate(doc.Key())
	e.tokens.Invalidate(doc.Key() + "|" + doc.LanguageID)
	e.results.Invalidate(doc.Key())
}

// Metrics is a point-in-time snapshot of the engine's caches and memory
// pressure, for diagnostics.
type Metrics struct {
	ParseStates   cache.Stats
	Tokens        cache.Stats
	Results       cache.Stats
	Editors       cache.Stats
	UsageBytes    int
	Tier          cache.PressureTier
	LowMemoryMode bool
}

// Metrics returns the current cache and memory-pressure snapshot.
func (e *Engine) Metrics() Metrics {
	usage := e.monitor.Usage()
	return Metrics{
		ParseStates:   e.parseStates.Stats(),
		Tokens:        e.tokens.Stats(),
		Results:       e.results.Stats(),
		Editors:       e.editors.Stats(),
		UsageBytes:    usage,
		Tier:          e.monitor.Classify(usage),
		LowMemoryMode: e.monitor.LowMemoryMode(),
	}
}
