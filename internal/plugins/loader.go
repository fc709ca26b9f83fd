// Package plugins hosts native dynamic-library plugins: loading, registry,
// hook dispatch and the content transform chain.
package plugins

import (
	"fmt"
	"log/slog"
	"os"
	goplugin "plugin"

	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// LibrarySuffix is the filename suffix of loadable plugin libraries.
// Go's -buildmode=plugin emits .so on every supported platform.
const LibrarySuffix = ".so"

// Record pairs a plugin instance with the library it came from. The handle
// stays referenced for the life of the record; Go never unmaps a loaded
// plugin, so a dropped record simply abandons the instance.
type Record struct {
	Instance pluginapi.Plugin
	Handle   *goplugin.Plugin
	Path     string
}

// Loader turns a library path into a Record. It is an interface so tests
// can register fake records without compiling .so fixtures.
type Loader interface {
	Load(path string, ctx *pluginapi.Context) (*Record, error)
}

// DylibLoader is the production Loader on top of the runtime plugin package.
//
// Every call into foreign code (open, lookup, factory, Init) runs behind a
// recover boundary so a panicking plugin is reported, not fatal.
type DylibLoader struct {
	Logger *slog.Logger
}

func (l *DylibLoader) Load(path string, ctx *pluginapi.Context) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "stat library", Cause: err}
	}
	if info.Size() == 0 {
		return nil, &LoadError{Path: path, Message: "library file is empty"}
	}

	var handle *goplugin.Plugin
	if err := guard("open library", func() error {
		var openErr error
		handle, openErr = goplugin.Open(path)
		return openErr
	}); err != nil {
		return nil, &LoadError{Path: path, Message: "open library", Cause: err}
	}

	var sym goplugin.Symbol
	if err := guard("lookup factory", func() error {
		var lookupErr error
		sym, lookupErr = handle.Lookup(pluginapi.FactorySymbol)
		return lookupErr
	}); err != nil {
		return nil, &LoadError{Path: path, Message: "lookup " + pluginapi.FactorySymbol, Cause: err}
	}

	factory, ok := sym.(func() pluginapi.Plugin)
	if !ok {
		return nil, &LoadError{Path: path,
			Message: fmt.Sprintf("%s has wrong type %T, want func() plugin.Plugin", pluginapi.FactorySymbol, sym)}
	}

	var instance pluginapi.Plugin
	if err := guard("construct plugin", func() error {
		instance = factory()
		if instance == nil {
			return fmt.Errorf("factory returned nil")
		}
		return nil
	}); err != nil {
		return nil, &LoadError{Path: path, Message: "construct plugin", Cause: err}
	}

	name := instance.Name()
	pluginCtx := ctx.Clone()
	if pluginCtx != nil {
		logger := l.Logger
		if logger == nil {
			logger = slog.Default()
		}
		pluginCtx.Logger = logger.With("plugin", name)
	}

	if err := guard("init plugin", func() error {
		return instance.Init(pluginCtx)
	}); err != nil {
		// The library stays mapped; only the instance is discarded.
		return nil, &InitError{Plugin: name, Cause: err}
	}

	return &Record{Instance: instance, Handle: handle, Path: path}, nil
}

// guard runs fn and converts a panic into an error.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op, r)
		}
	}()
	return fn()
}
