package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/plugins"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// BuildFunc runs one generation and returns its report.
type BuildFunc func(ctx context.Context) (*site.BuildReport, error)

// Controller watches the source and plugin directories and drives debounced
// rebuilds. Plugin-library changes additionally flag the host for hot
// reload, which the next run picks up.
type Controller struct {
	SourceDir  string
	PluginsDir string
	Host       *plugins.Host
	Build      BuildFunc

	// OnReport, when set, observes every completed build (livereload).
	OnReport func(*site.BuildReport)

	QuietWindow time.Duration
	MaxDelay    time.Duration
	Logger      *slog.Logger

	running atomic.Bool
	deb     atomic.Pointer[Debouncer]
}

// Request queues a debounced rebuild from an external trigger (scheduler,
// config change). External triggers share the fs-event path, so they
// coalesce with in-flight changes and never overlap a running build.
// Requests arriving before Run has started are dropped.
func (c *Controller) Request(reason string) {
	if d := c.deb.Load(); d != nil {
		d.Request(reason)
	}
}

// Run blocks until ctx is canceled. Builds run on the debouncer's schedule,
// one at a time; the cooperative stop is the context plus the running flag.
func (c *Controller) Run(ctx context.Context) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryInternal, xerrors.SeverityFatal, "create fs watcher")
	}
	defer watcher.Close()

	if err := addTree(watcher, c.SourceDir); err != nil {
		return err
	}
	if c.PluginsDir != "" {
		// Missing plugins dir is fine; it may appear later but we only
		// watch what exists at startup.
		if _, statErr := os.Stat(c.PluginsDir); statErr == nil {
			if err := watcher.Add(c.PluginsDir); err != nil {
				return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
					"watch plugins directory").WithContext("path", c.PluginsDir)
			}
		}
	}

	deb, err := NewDebouncer(DebouncerConfig{
		QuietWindow:       c.QuietWindow,
		MaxDelay:          c.MaxDelay,
		CheckBuildRunning: c.running.Load,
		Emit: func(reason, cause string) {
			go c.runBuild(ctx, logger, reason, cause)
		},
	})
	if err != nil {
		return err
	}
	c.deb.Store(deb)
	go func() { _ = deb.Run(ctx) }()
	<-deb.Ready()

	logger.Info("Watching for changes",
		logfields.Path(c.SourceDir),
		slog.String("plugins_dir", c.PluginsDir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handleEvent(watcher, deb, logger, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (c *Controller) handleEvent(watcher *fsnotify.Watcher, deb *Debouncer, logger *slog.Logger, event fsnotify.Event) {
	// New directories under the source tree get watched as they appear.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = watcher.Add(event.Name)
		}
	}

	if c.isPluginLibrary(event.Name) {
		logger.Info("Plugin library changed, scheduling hot reload", logfields.Path(event.Name))
		c.Host.SetHotReload(true)
		deb.Request("plugin:" + filepath.Base(event.Name))
		return
	}

	// Editors produce Chmod noise; everything else is a content change.
	if event.Op == fsnotify.Chmod {
		return
	}
	deb.Request("source:" + filepath.Base(event.Name))
}

func (c *Controller) isPluginLibrary(path string) bool {
	if c.PluginsDir == "" || !strings.HasSuffix(path, plugins.LibrarySuffix) {
		return false
	}
	rel, err := filepath.Rel(c.PluginsDir, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func (c *Controller) runBuild(ctx context.Context, logger *slog.Logger, reason, cause string) {
	if !c.running.CompareAndSwap(false, true) {
		// Lost the start race with another build; re-queue so the trigger
		// is not dropped.
		c.Request(reason)
		return
	}
	defer c.running.Store(false)

	logger.Info("Rebuild triggered", slog.String("reason", reason), slog.String("cause", cause))
	report, err := c.Build(ctx)
	if err != nil {
		logger.Error("Rebuild failed", logfields.Error(err))
	}
	if report != nil && c.OnReport != nil {
		c.OnReport(report)
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
			"watch source tree").WithContext("path", root)
	}
	return nil
}
