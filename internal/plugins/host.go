package plugins

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// Host owns the plugin registry and every call across the plugin boundary.
//
// The registry lock is never held across a plugin call; dispatch and
// transform snapshot the record list first, so a slow or wedged plugin
// cannot block registration queries from other goroutines.
type Host struct {
	mu      sync.RWMutex
	loader  Loader
	logger  *slog.Logger
	names   []string           // normalized names in registration order
	records map[string]*Record // normalized name -> record

	ctx       *pluginapi.Context
	hotReload atomic.Bool
}

// LoadFailure describes one library that could not be brought up.
type LoadFailure struct {
	File   string
	Reason string
}

// LoadSummary reports a discovery pass. Discovery never fails wholesale;
// callers decide how loudly to report individual failures.
type LoadSummary struct {
	Loaded   int
	Failed   int
	Failures []LoadFailure
}

// NewHost creates a host using the given loader, defaulting to DylibLoader.
func NewHost(loader Loader, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = &DylibLoader{Logger: logger}
	}
	return &Host{
		loader:  loader,
		logger:  logger,
		records: map[string]*Record{},
	}
}

// SetContext installs the snapshot handed to plugins at load time. The host
// owns the context; callers must not mutate it afterwards.
func (h *Host) SetContext(ctx *pluginapi.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctx = ctx
}

// Context returns the current plugin context.
func (h *Host) Context() *pluginapi.Context {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ctx
}

// NormalizeName maps underscores to hyphens so "word_count" and
// "word-count" are the same plugin.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// DiscoverAndLoadAll scans dir for plugin libraries and loads each one in
// isolation. Filenames are sorted first so registration order, and with it
// the transform chain, is reproducible across runs. A missing directory is
// an empty summary, not an error.
func (h *Host) DiscoverAndLoadAll(dir string) LoadSummary {
	var summary LoadSummary

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Warn("Cannot read plugins directory", logfields.Path(dir), logfields.Error(err))
		}
		return summary
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), LibrarySuffix) {
			continue
		}
		candidates = append(candidates, entry.Name())
	}
	sort.Strings(candidates)

	ctx := h.Context()
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		rec, err := h.loader.Load(path, ctx)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, LoadFailure{File: name, Reason: err.Error()})
			h.logger.Warn("Plugin failed to load", logfields.Path(path), logfields.Error(err))
			continue
		}
		h.Register(rec.Instance.Name(), rec)
		summary.Loaded++
	}

	h.logger.Info("Plugin discovery complete",
		logfields.Path(dir),
		slog.Int("loaded", summary.Loaded),
		slog.Int("failed", summary.Failed))
	return summary
}

// Register adds a record under the normalized name. Registering an existing
// name replaces the record in its original chain position; the last
// registration wins.
func (h *Host) Register(name string, rec *Record) {
	normalized := NormalizeName(name)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.records[normalized]; exists {
		h.logger.Warn("Plugin re-registered, replacing previous instance", logfields.Plugin(normalized))
	} else {
		h.names = append(h.names, normalized)
	}
	h.records[normalized] = rec
}

// snapshot returns the records in registration order without holding the lock
// during plugin calls.
func (h *Host) snapshot() []namedRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]namedRecord, 0, len(h.names))
	for _, name := range h.names {
		out = append(out, namedRecord{name: name, rec: h.records[name]})
	}
	return out
}

type namedRecord struct {
	name string
	rec  *Record
}

// DispatchHook calls ExecuteHook on every plugin in registration order. All
// plugins run regardless of individual failures; the result is nil or an
// AggregateError naming each failing plugin.
func (h *Host) DispatchHook(hook pluginapi.Hook) error {
	var errs []error
	for _, nr := range h.snapshot() {
		nr := nr
		err := guard("execute hook", func() error {
			return nr.rec.Instance.ExecuteHook(hook)
		})
		if err != nil {
			he := &HookError{Plugin: nr.name, Hook: hook, Cause: err}
			h.logger.Warn("Plugin hook failed",
				logfields.Plugin(nr.name), logfields.Hook(hook.String()), logfields.Error(err))
			errs = append(errs, he)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Op: "dispatch " + hook.String(), Errors: errs}
	}
	return nil
}

// Transform folds content through every plugin in registration order. A
// plugin that errors or panics is logged and skipped; its input passes to
// the next plugin unchanged, so a single bad plugin cannot corrupt the chain.
func (h *Host) Transform(content string, contentType pluginapi.ContentType) string {
	current := content
	for _, nr := range h.snapshot() {
		nr := nr
		var next string
		err := guard("process content", func() error {
			var procErr error
			next, procErr = nr.rec.Instance.ProcessContent(current, contentType)
			return procErr
		})
		if err != nil {
			ce := &ContentError{Plugin: nr.name, Cause: err}
			h.logger.Warn("Plugin transform failed, passing content through",
				logfields.Plugin(nr.name), slog.String("content_type", contentType.String()), logfields.Error(ce))
			continue
		}
		current = next
	}
	return current
}

// Cleanup calls Cleanup on every plugin, collecting failures. Records are
// dropped afterwards; the libraries themselves stay mapped for the process
// lifetime.
func (h *Host) Cleanup() error {
	recs := h.snapshot()

	var errs []error
	for _, nr := range recs {
		nr := nr
		if err := guard("cleanup", func() error { return nr.rec.Instance.Cleanup() }); err != nil {
			h.logger.Warn("Plugin cleanup failed", logfields.Plugin(nr.name), logfields.Error(err))
			errs = append(errs, &HookError{Plugin: nr.name, Hook: "cleanup", Cause: err})
		}
	}

	h.mu.Lock()
	h.names = nil
	h.records = map[string]*Record{}
	h.mu.Unlock()

	if len(errs) > 0 {
		return &AggregateError{Op: "cleanup", Errors: errs}
	}
	return nil
}

// SetHotReload flags (or clears) a pending plugin reload. The pipeline
// consults the flag at the top of each run.
func (h *Host) SetHotReload(pending bool) {
	h.hotReload.Store(pending)
}

// HotReloadPending reports whether a reload is due.
func (h *Host) HotReloadPending() bool {
	return h.hotReload.Load()
}

// Reload abandons the current registry and re-discovers dir. Old instances
// get a best-effort Cleanup; their libraries remain mapped, which is the
// cost of hot reload on a runtime that cannot unload code.
func (h *Host) Reload(dir string) LoadSummary {
	h.hotReload.Store(false)
	if err := h.Cleanup(); err != nil {
		h.logger.Warn("Cleanup before reload reported failures", logfields.Error(err))
	}
	h.logger.Info("Reloading plugins", logfields.Path(dir))
	return h.DiscoverAndLoadAll(dir)
}

// ActivePlugins reports the normalized names of registered plugins, shaped
// for template conditionals.
func (h *Host) ActivePlugins() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]bool, len(h.names))
	for _, name := range h.names {
		out[name] = true
	}
	return out
}

// Count reports the number of registered plugins.
func (h *Host) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.names)
}

// Resources concatenates every plugin's page resources in registration
// order. A panicking plugin contributes nothing.
func (h *Host) Resources() []pluginapi.Resource {
	var out []pluginapi.Resource
	for _, nr := range h.snapshot() {
		nr := nr
		_ = guard("resources", func() error {
			out = append(out, nr.rec.Instance.Resources()...)
			return nil
		})
	}
	return out
}

// TemplateFuncs merges every plugin's template functions. Later
// registrations win on name collisions, mirroring Register semantics.
func (h *Host) TemplateFuncs() map[string]pluginapi.TemplateFunc {
	out := map[string]pluginapi.TemplateFunc{}
	for _, nr := range h.snapshot() {
		nr := nr
		_ = guard("template funcs", func() error {
			for name, fn := range nr.rec.Instance.TemplateFuncs() {
				out[name] = fn
			}
			return nil
		})
	}
	return out
}
