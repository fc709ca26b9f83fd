package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/plugins"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new site configuration"`

	Build struct{} `cmd:"" help:"Generate the site once"`

	Serve struct {
		Port int `short:"p" help:"Port override for the preview server"`
	} `cmd:"" help:"Serve the site with live reload, rebuilding on changes"`

	Watch struct{} `cmd:"" help:"Rebuild on source or plugin changes without serving"`

	New struct {
		Title string `arg:"" help:"Title of the new post"`
	} `cmd:"" help:"Scaffold a new post"`

	Clean struct{} `cmd:"" help:"Remove the output directory"`

	Deploy struct {
		NoBuild bool `help:"Deploy the existing output without rebuilding"`
	} `cmd:"" help:"Build and push the output directory to the deploy remote"`

	History struct {
		Limit int `short:"n" help:"Number of builds to show" default:"10"`
	} `cmd:"" help:"Show recent build history"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("sitegen"),
		kong.Description("Plugin-extensible static site generator"),
		kong.Vars{"version": version.String()})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch kctx.Command() {
	case "init":
		err = runInit(CLI.Config, CLI.Init.Force)
	case "build":
		err = runBuild(ctx, logger)
	case "serve":
		err = runServe(ctx, logger)
	case "watch":
		err = runWatch(ctx, logger)
	case "new <title>":
		err = runNew(logger, CLI.New.Title)
	case "clean":
		err = runClean(logger)
	case "deploy":
		err = runDeploy(ctx, logger)
	case "history":
		err = runHistory(ctx, CLI.History.Limit)
	}
	if err != nil {
		logger.Error("Command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration %s already exists (use --force to overwrite)", path)
	}
	return config.Save(config.Default(), path)
}

// app bundles the components every generation-facing command needs.
type app struct {
	cfg      *config.Config
	host     *plugins.Host
	store    *content.Store
	gen      *site.Generator
	recorder metrics.Recorder
	registry *prom.Registry
	logger   *slog.Logger
}

// newApp loads configuration, constructs the generator and brings up the
// plugin host (discovery included).
func newApp(logger *slog.Logger, withMetrics bool) (*app, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		host:     plugins.NewHost(nil, logger),
		store:    content.NewStore(),
		recorder: metrics.NoopRecorder{},
		logger:   logger,
	}
	if withMetrics && cfg.Server.Metrics {
		a.registry = prom.NewRegistry()
		a.recorder = metrics.NewPrometheusRecorder(a.registry)
	}
	a.gen = site.NewGenerator(cfg, a.host, a.store, a.recorder, logger)

	a.host.SetContext(a.gen.BuildContext())
	a.host.DiscoverAndLoadAll(cfg.PluginsDir)
	a.dispatch(pluginInitHook)
	return a, nil
}

func (a *app) close() {
	if err := a.host.Cleanup(); err != nil {
		a.logger.Warn("Plugin cleanup reported failures", "error", err)
	}
}

// build runs one generation and records it in the history store.
func (a *app) build(ctx context.Context) (*site.BuildReport, error) {
	report, err := a.gen.Run(ctx)
	if report != nil {
		recordHistory(a.logger, report)
	}
	return report, err
}

func runBuild(ctx context.Context, logger *slog.Logger) error {
	a, err := newApp(logger, false)
	if err != nil {
		return err
	}
	defer a.close()

	_, err = a.build(ctx)
	return err
}
