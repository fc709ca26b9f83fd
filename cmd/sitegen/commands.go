package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/deploy"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/server"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/state"
	"git.home.luguber.info/inful/sitegen/internal/watch"
	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

const pluginInitHook = pluginapi.HookInit

// historyPath is where build history accumulates, next to the config.
const historyPath = ".sitegen/builds.db"

// dispatch fires a hook outside a generation run; failures are logged, never fatal.
func (a *app) dispatch(hook pluginapi.Hook) {
	if err := a.host.DispatchHook(hook); err != nil {
		a.logger.Warn("Plugin hook failed", "hook", hook.String(), "error", err)
	}
}

func recordHistory(logger *slog.Logger, report *site.BuildReport) {
	if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
		logger.Warn("Cannot create history directory", "error", err)
		return
	}
	store, err := state.NewHistoryStore(historyPath)
	if err != nil {
		logger.Warn("Cannot open build history", "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(context.Background(), report); err != nil {
		logger.Warn("Cannot record build", "error", err)
	}
}

func runServe(ctx context.Context, logger *slog.Logger) error {
	a, err := newApp(logger, true)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.build(ctx); err != nil {
		return err
	}

	port := a.cfg.Server.Port
	if CLI.Serve.Port > 0 {
		port = CLI.Serve.Port
	}
	srv := server.New(server.Options{
		Port:      port,
		OutputDir: a.cfg.OutputDir,
		Registry:  a.registry,
		Logger:    logger,
	})

	controller := &watch.Controller{
		SourceDir:   a.cfg.SourceDir,
		PluginsDir:  a.cfg.PluginsDir,
		Host:        a.host,
		Build:       a.build,
		OnReport:    func(r *site.BuildReport) { srv.Hub().Broadcast(r.BuildID) },
		QuietWindow: a.cfg.Watch.Debounce,
		MaxDelay:    a.cfg.Watch.MaxDelay,
		Logger:      logger,
	}

	// Scheduled rebuilds go through the controller's debounced request path,
	// so they coalesce with fs-triggered builds and never overlap one.
	var sched *watch.Scheduler
	if a.cfg.Watch.Schedule != "" {
		sched, err = watch.NewScheduler(a.cfg.Watch.Schedule, func() {
			controller.Request("schedule")
		}, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	a.dispatch(pluginapi.HookBeforeServerStart)
	errCh := make(chan error, 2)
	go func() { errCh <- controller.Run(ctx) }()
	go func() { errCh <- srv.Run(ctx) }()

	// Plugins observing AfterServerStart expect a bound listener.
	select {
	case <-srv.Ready():
		a.dispatch(pluginapi.HookAfterServerStart)
	case err := <-errCh:
		if err != nil {
			return err
		}
		return <-errCh
	}

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return nil
}

func runWatch(ctx context.Context, logger *slog.Logger) error {
	a, err := newApp(logger, false)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.build(ctx); err != nil {
		return err
	}

	controller := &watch.Controller{
		SourceDir:   a.cfg.SourceDir,
		PluginsDir:  a.cfg.PluginsDir,
		Host:        a.host,
		Build:       a.build,
		QuietWindow: a.cfg.Watch.Debounce,
		MaxDelay:    a.cfg.Watch.MaxDelay,
		Logger:      logger,
	}
	return controller.Run(ctx)
}

func runNew(logger *slog.Logger, title string) error {
	a, err := newApp(logger, false)
	if err != nil {
		return err
	}
	defer a.close()

	slug := content.Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}
	path := filepath.Join(a.cfg.SourceDir, "_posts", slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("post %s already exists", path)
	}

	doc, err := frontmatter.Compose(map[string]any{
		"title":      title,
		"date":       time.Now().Format("2006-01-02 15:04:05"),
		"categories": []string{},
		"tags":       []string{},
	}, []byte("\n"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return err
	}

	a.dispatch(pluginapi.HookNewPost)
	logger.Info("Post created", "path", path)
	return nil
}

func runClean(logger *slog.Logger) error {
	a, err := newApp(logger, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := os.RemoveAll(a.cfg.OutputDir); err != nil {
		return err
	}
	a.dispatch(pluginapi.HookClean)
	logger.Info("Output removed", "path", a.cfg.OutputDir)
	return nil
}

func runDeploy(ctx context.Context, logger *slog.Logger) error {
	a, err := newApp(logger, false)
	if err != nil {
		return err
	}
	defer a.close()

	if !CLI.Deploy.NoBuild {
		if _, err := a.build(ctx); err != nil {
			return err
		}
	}

	a.dispatch(pluginapi.HookBeforeDeploy)
	d := &deploy.Deployer{
		OutputDir: a.cfg.OutputDir,
		Config:    a.cfg.Deploy,
		Logger:    logger,
	}
	if err := d.Deploy(ctx); err != nil {
		return err
	}
	a.dispatch(pluginapi.HookAfterDeploy)
	return nil
}

func runHistory(ctx context.Context, limit int) error {
	store, err := state.NewHistoryStore(historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %-8s  docs=%-4d pages=%-4d plugins=%-2d failures=%-2d  %s\n",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Outcome, rec.Documents, rec.Pages, rec.Plugins, rec.Failures,
			rec.BuildID)
	}
	return nil
}
