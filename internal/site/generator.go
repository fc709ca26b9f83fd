package site

import (
	"context"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/plugins"
	"git.home.luguber.info/inful/sitegen/internal/theme"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// RendererFactory builds a Renderer with the plugin function bridge merged
// in. Swappable so tests run without theme files.
type RendererFactory func(extraFuncs template.FuncMap) (theme.Renderer, error)

// Generator drives one full generation run: hot-reload check, hooks,
// load/classify, then the emit stages.
type Generator struct {
	cfg      *config.Config
	host     *plugins.Host
	store    *content.Store
	recorder metrics.Recorder
	logger   *slog.Logger

	newRenderer RendererFactory
}

func NewGenerator(cfg *config.Config, host *plugins.Host, store *content.Store, recorder metrics.Recorder, logger *slog.Logger) *Generator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		cfg:      cfg,
		host:     host,
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
	g.newRenderer = func(extra template.FuncMap) (theme.Renderer, error) {
		return theme.New(cfg.ThemeDir, cfg.Theme, extra, logger)
	}
	return g
}

// SetRendererFactory overrides template loading, for tests.
func (g *Generator) SetRendererFactory(f RendererFactory) { g.newRenderer = f }

// BuildContext snapshots current config and store state for plugins.
func (g *Generator) BuildContext() *pluginapi.Context {
	docs, cats, tags := g.store.Snapshot()
	return &pluginapi.Context{
		BaseDir:    ".",
		PluginsDir: g.cfg.PluginsDir,
		ThemeDir:   filepath.Join(g.cfg.ThemeDir, g.cfg.Theme),
		OutputDir:  g.cfg.OutputDir,
		Site:       g.cfg.Site(),
		Documents:  docs,
		Categories: cats,
		Tags:       tags,
		Logger:     g.logger,
	}
}

// Run executes one generation. Hook and transform failures degrade the
// outcome to warning; only I/O and render failures are fatal.
func (g *Generator) Run(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport()
	bs := &BuildState{Generator: g, Report: report}
	g.logger.Info("Build starting", logfields.BuildID(report.BuildID))

	if g.host.HotReloadPending() {
		summary := g.host.Reload(g.cfg.PluginsDir)
		report.PluginFailures += summary.Failed
		if summary.Failed > 0 {
			report.AddWarning("plugin reload had failures")
		}
	}
	report.PluginsLoaded = g.host.Count()
	g.recorder.SetPluginsLoaded(report.PluginsLoaded)

	g.dispatch(pluginapi.HookBeforeGenerate, report)

	loadStages := NewPipeline().
		Add(StagePrepareOutput, stagePrepareOutput).
		Add(StageLoadContent, stageLoadContent).
		Add(StageClassify, stageClassify).
		Build()
	if err := runStages(ctx, bs, loadStages); err != nil {
		g.finishRun(report)
		return report, err
	}

	// Renderer assembly waits until plugins have seen BeforeGenerate and the
	// store is populated, so template functions observe current state.
	renderer, err := g.newRenderer(plugins.FuncMap(g.host.TemplateFuncs()))
	if err != nil {
		report.finish(OutcomeFailed)
		g.finishRun(report)
		return report, err
	}
	bs.renderer = renderer
	bs.Head, bs.Footer = g.pageFragments()

	g.dispatch(pluginapi.HookBeforeRouteGenerate, report)

	emitStages := NewPipeline().
		Add(StagePostPages, stagePostPages).
		Add(StageIndexPages, stageIndexPages).
		Add(StageCategoryPages, stageCategoryPages).
		Add(StageTagPages, stageTagPages).
		Add(StageArchivePages, stageArchivePages).
		Add(StageRSSFeed, stageRSSFeed).
		Add(StageAtomFeed, stageAtomFeed).
		Add(StageSearchIndex, stageSearchIndex).
		Add(StageThemeAssets, stageThemeAssets).
		Build()
	if err := runStages(ctx, bs, emitStages); err != nil {
		g.finishRun(report)
		return report, err
	}

	g.dispatch(pluginapi.HookAfterRouteGenerate, report)
	g.dispatch(pluginapi.HookAfterGenerate, report)

	report.finish("")
	g.finishRun(report)
	return report, nil
}

func (g *Generator) finishRun(report *BuildReport) {
	if report.FinishedAt.IsZero() {
		report.finish("")
	}
	g.recorder.ObserveBuildDuration(report.Duration)
	g.recorder.IncBuildOutcome(report.Outcome)
	logSummary(g.logger, report)
}

// dispatch runs a hook across all plugins, degrading failures to warnings.
func (g *Generator) dispatch(hook pluginapi.Hook, report *BuildReport) {
	if err := g.host.DispatchHook(hook); err != nil {
		report.PluginFailures++
		g.recorder.IncPluginFailure("hook")
		report.AddWarning(err.Error())
	}
}

// pageFragments concatenates plugin resources by injection point.
func (g *Generator) pageFragments() (head, footer template.HTML) {
	var hb, fb strings.Builder
	for _, res := range g.host.Resources() {
		switch res.Location {
		case pluginapi.LocationFooter:
			fb.WriteString(res.HTML)
			fb.WriteByte('\n')
		default:
			hb.WriteString(res.HTML)
			hb.WriteByte('\n')
		}
	}
	return template.HTML(hb.String()), template.HTML(fb.String())
}

func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	out := bs.Generator.cfg.OutputDir
	if err := os.MkdirAll(out, 0o755); err != nil {
		return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
			"create output directory").WithContext("path", out)
	}
	return nil
}

func stageLoadContent(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	loader := &content.Loader{
		SourceDir: g.cfg.SourceDir,
		BaseURL:   strings.TrimSuffix(g.cfg.URL, "/") + g.cfg.Root,
		Transform: g.host.Transform,
		Logger:    g.logger,
	}
	docs, err := loader.Load()
	if err != nil {
		return err
	}
	g.store.SetDocuments(docs)
	bs.Report.Documents = len(docs)
	g.recorder.SetDocumentsLoaded(len(docs))
	return nil
}

func stageClassify(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	g.store.Classify(g.logger)
	bs.Docs = g.store.Documents()
	bs.Categories = g.store.Categories()
	bs.Tags = g.store.Tags()

	// Refresh the plugin snapshot now that the store is populated, so hooks
	// and template functions from here on see this run's content.
	g.host.SetContext(g.BuildContext())
	return nil
}

// writePage writes rendered HTML under the output dir, creating parents.
func (bs *BuildState) writePage(relPath, html string) error {
	full := filepath.Join(bs.Generator.cfg.OutputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
			"create page directory").WithContext("path", full)
	}
	if err := os.WriteFile(full, []byte(html), 0o644); err != nil {
		return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
			"write page").WithContext("path", full)
	}
	bs.Report.PagesRendered++
	return nil
}

// pageData seeds the common template payload.
func (bs *BuildState) pageData(title string) map[string]any {
	return map[string]any{
		"Site":    bs.Generator.cfg.Site(),
		"Title":   title,
		"Head":    bs.Head,
		"Footer":  bs.Footer,
		"Plugins": bs.Generator.host.ActivePlugins(),
	}
}
