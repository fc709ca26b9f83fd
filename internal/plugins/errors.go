package plugins

import (
	"fmt"
	"strings"

	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// LoadError reports a failure to open a library or resolve its factory.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load plugin %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load plugin %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// InitError reports a plugin whose Init failed or panicked. The library is
// mapped but the instance was discarded.
type InitError struct {
	Plugin string
	Cause  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init plugin %s: %v", e.Plugin, e.Cause)
}

func (e *InitError) Unwrap() error { return e.Cause }

// HookError reports a single plugin failing a hook dispatch.
type HookError struct {
	Plugin string
	Hook   pluginapi.Hook
	Cause  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %s hook %s: %v", e.Plugin, e.Hook, e.Cause)
}

func (e *HookError) Unwrap() error { return e.Cause }

// ContentError reports a plugin failing (or panicking in) a content transform.
type ContentError struct {
	Plugin string
	Cause  error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("plugin %s content transform: %v", e.Plugin, e.Cause)
}

func (e *ContentError) Unwrap() error { return e.Cause }

// AggregateError collects per-plugin failures from an all-run operation
// (hook dispatch, cleanup) so one bad plugin never hides the others.
type AggregateError struct {
	Op     string
	Errors []error
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%s: %d plugin(s) failed: %s", e.Op, len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the collected errors to errors.Is/As.
func (e *AggregateError) Unwrap() []error { return e.Errors }
