package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// fakePlugin is a scriptable in-process plugin for host tests.
type fakePlugin struct {
	pluginapi.Base
	name      string
	hookErr   error
	hookPanic bool
	hooks     []pluginapi.Hook
	cleaned   bool
	cleanErr  error
	transform func(string, pluginapi.ContentType) (string, error)
	resources []pluginapi.Resource
	funcs     map[string]pluginapi.TemplateFunc
}

func (f *fakePlugin) Name() string        { return f.name }
func (f *fakePlugin) Version() string     { return "v0.0.0" }
func (f *fakePlugin) Description() string { return "fake" }

func (f *fakePlugin) ExecuteHook(hook pluginapi.Hook) error {
	if f.hookPanic {
		panic("hook exploded")
	}
	f.hooks = append(f.hooks, hook)
	return f.hookErr
}

func (f *fakePlugin) ProcessContent(content string, ct pluginapi.ContentType) (string, error) {
	if f.transform != nil {
		return f.transform(content, ct)
	}
	return content, nil
}

func (f *fakePlugin) Resources() []pluginapi.Resource { return f.resources }

func (f *fakePlugin) TemplateFuncs() map[string]pluginapi.TemplateFunc { return f.funcs }

func (f *fakePlugin) Cleanup() error {
	f.cleaned = true
	return f.cleanErr
}

// fakeLoader maps library paths to canned plugins or errors.
type fakeLoader struct {
	plugins map[string]pluginapi.Plugin
	errs    map[string]error
}

func (l *fakeLoader) Load(path string, _ *pluginapi.Context) (*Record, error) {
	base := filepath.Base(path)
	if err, ok := l.errs[base]; ok {
		return nil, err
	}
	if p, ok := l.plugins[base]; ok {
		return &Record{Instance: p, Path: path}, nil
	}
	return nil, &LoadError{Path: path, Message: "no such fixture"}
}

func appendingPlugin(name, suffix string) *fakePlugin {
	return &fakePlugin{
		name: name,
		transform: func(content string, _ pluginapi.ContentType) (string, error) {
			return content + suffix, nil
		},
	}
}

func pluginDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	return dir
}

func TestDiscoverAndLoadAllIsolatesFailures(t *testing.T) {
	dir := pluginDir(t, "alpha.so", "beta.so", "broken.so", "notes.txt")
	loader := &fakeLoader{
		plugins: map[string]pluginapi.Plugin{
			"alpha.so": appendingPlugin("alpha", "[a]"),
			"beta.so":  appendingPlugin("beta", "[b]"),
		},
		errs: map[string]error{
			"broken.so": &LoadError{Path: "broken.so", Message: "open library", Cause: errors.New("bad magic")},
		},
	}
	host := NewHost(loader, nil)

	summary := host.DiscoverAndLoadAll(dir)

	assert.Equal(t, 2, summary.Loaded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "broken.so", summary.Failures[0].File)
	assert.Equal(t, 2, host.Count())
}

func TestDiscoverAndLoadAllSortsCandidates(t *testing.T) {
	// Filenames deliberately created out of order; the chain must follow
	// sorted filename order, not directory order.
	dir := pluginDir(t, "zeta.so", "alpha.so")
	loader := &fakeLoader{plugins: map[string]pluginapi.Plugin{
		"zeta.so":  appendingPlugin("zeta", "[z]"),
		"alpha.so": appendingPlugin("alpha", "[a]"),
	}}
	host := NewHost(loader, nil)
	host.DiscoverAndLoadAll(dir)

	out := host.Transform("x", pluginapi.ContentMarkdown)
	assert.Equal(t, "x[a][z]", out)
}

func TestDiscoverAndLoadAllMissingDirectory(t *testing.T) {
	host := NewHost(&fakeLoader{}, nil)
	summary := host.DiscoverAndLoadAll(filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, 0, summary.Loaded)
	assert.Equal(t, 0, summary.Failed)
}

func TestRegisterNormalizesNames(t *testing.T) {
	host := NewHost(&fakeLoader{}, nil)
	host.Register("word_count", &Record{Instance: appendingPlugin("word_count", "[1]")})

	active := host.ActivePlugins()
	assert.True(t, active["word-count"])
	_, hasRaw := active["word_count"]
	assert.False(t, hasRaw)
}

func TestRegisterLastWins(t *testing.T) {
	host := NewHost(&fakeLoader{}, nil)
	host.Register("dup", &Record{Instance: appendingPlugin("dup", "[old]")})
	host.Register("other", &Record{Instance: appendingPlugin("other", "[o]")})
	host.Register("dup", &Record{Instance: appendingPlugin("dup", "[new]")})

	assert.Equal(t, 2, host.Count())
	// The replacement keeps dup's original chain position before other.
	assert.Equal(t, "x[new][o]", host.Transform("x", pluginapi.ContentMarkdown))
}

func TestTransformFoldsInOrder(t *testing.T) {
	host := NewHost(&fakeLoader{}, nil)
	host.Register("one", &Record{Instance: appendingPlugin("one", "-1")})
	host.Register("two", &Record{Instance: appendingPlugin("two", "-2")})
	host.Register("three", &Record{Instance: appendingPlugin("three", "-3")})

	assert.Equal(t, "seed-1-2-3", host.Transform("seed", pluginapi.ContentHTML))
}

func TestTransformSkipsFailingPlugin(t *testing.T) {
	failing := &fakePlugin{
		name: "failing",
		transform: func(string, pluginapi.ContentType) (string, error) {
			return "garbage", errors.New("boom")
		},
	}
	panicking := &fakePlugin{
		name: "panicking",
		transform: func(string, pluginapi.ContentType) (string, error) {
			panic("transform exploded")
		},
	}
	host := NewHost(&fakeLoader{}, nil)
	host.Register("a", &Record{Instance: appendingPlugin("a", "[a]")})
	host.Register("failing", &Record{Instance: failing})
	host.Register("panicking", &Record{Instance: panicking})
	host.Register("b", &Record{Instance: appendingPlugin("b", "[b]")})

	// Failing plugins contribute nothing; their input flows through unchanged.
	assert.Equal(t, "x[a][b]", host.Transform("x", pluginapi.ContentMarkdown))
}

func TestTransformEmptyRegistryIsIdentity(t *testing.T) {
	host := NewHost(&fakeLoader{}, nil)
	assert.Equal(t, "unchanged", host.Transform("unchanged", pluginapi.ContentPlain))
}

func TestDispatchHookRunsAllAndAggregates(t *testing.T) {
	ok := &fakePlugin{name: "ok"}
	bad := &fakePlugin{name: "bad", hookErr: errors.New("nope")}
	explosive := &fakePlugin{name: "explosive", hookPanic: true}
	late := &fakePlugin{name: "late"}

	host := NewHost(&fakeLoader{}, nil)
	host.Register("ok", &Record{Instance: ok})
	host.Register("bad", &Record{Instance: bad})
	host.Register("explosive", &Record{Instance: explosive})
	host.Register("late", &Record{Instance: late})

	err := host.DispatchHook(pluginapi.HookBeforeGenerate)
	require.Error(t, err)

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.Contains(t, agg.Error(), "bad")
	assert.Contains(t, agg.Error(), "explosive")

	// Plugins after the failures still ran.
	assert.Equal(t, []pluginapi.Hook{pluginapi.HookBeforeGenerate}, late.hooks)
}

func TestDispatchHookCleanRun(t *testing.T) {
	p := &fakePlugin{name: "p"}
	host := NewHost(&fakeLoader{}, nil)
	host.Register("p", &Record{Instance: p})

	require.NoError(t, host.DispatchHook(pluginapi.HookAfterGenerate))
	assert.Equal(t, []pluginapi.Hook{pluginapi.HookAfterGenerate}, p.hooks)
}

func TestCleanupCollectsErrorsAndDropsRecords(t *testing.T) {
	good := &fakePlugin{name: "good"}
	bad := &fakePlugin{name: "bad", cleanErr: errors.New("stuck")}
	host := NewHost(&fakeLoader{}, nil)
	host.Register("good", &Record{Instance: good})
	host.Register("bad", &Record{Instance: bad})

	err := host.Cleanup()
	require.Error(t, err)
	assert.True(t, good.cleaned)
	assert.True(t, bad.cleaned)
	assert.Equal(t, 0, host.Count())
}

func TestHotReloadFlagAndReload(t *testing.T) {
	dir := pluginDir(t, "alpha.so")
	old := appendingPlugin("alpha", "[old]")
	loader := &fakeLoader{plugins: map[string]pluginapi.Plugin{"alpha.so": old}}
	host := NewHost(loader, nil)
	host.DiscoverAndLoadAll(dir)

	assert.False(t, host.HotReloadPending())
	host.SetHotReload(true)
	assert.True(t, host.HotReloadPending())

	// Swap the fixture, as a rebuilt library would.
	loader.plugins["alpha.so"] = appendingPlugin("alpha", "[new]")
	summary := host.Reload(dir)

	assert.False(t, host.HotReloadPending())
	assert.Equal(t, 1, summary.Loaded)
	assert.True(t, old.cleaned)
	assert.Equal(t, "x[new]", host.Transform("x", pluginapi.ContentMarkdown))
}

func TestResourcesAndTemplateFuncs(t *testing.T) {
	first := &fakePlugin{
		name:      "first",
		resources: []pluginapi.Resource{{HTML: "<script src=a.js></script>", Location: pluginapi.LocationHead}},
		funcs: map[string]pluginapi.TemplateFunc{
			"shared": func(map[string]any) (any, error) { return "first", nil },
			"mine":   func(map[string]any) (any, error) { return "mine", nil },
		},
	}
	second := &fakePlugin{
		name:      "second",
		resources: []pluginapi.Resource{{HTML: "<footer-widget/>", Location: pluginapi.LocationFooter}},
		funcs: map[string]pluginapi.TemplateFunc{
			"shared": func(map[string]any) (any, error) { return "second", nil },
		},
	}
	host := NewHost(&fakeLoader{}, nil)
	host.Register("first", &Record{Instance: first})
	host.Register("second", &Record{Instance: second})

	res := host.Resources()
	require.Len(t, res, 2)
	assert.Equal(t, pluginapi.LocationHead, res[0].Location)

	funcs := host.TemplateFuncs()
	require.Contains(t, funcs, "shared")
	require.Contains(t, funcs, "mine")
	out, err := funcs["shared"](nil)
	require.NoError(t, err)
	assert.Equal(t, "second", out, "later registration wins on collision")
}

func TestAggregateErrorNamesEveryPlugin(t *testing.T) {
	errs := []error{
		&HookError{Plugin: "p1", Hook: pluginapi.HookClean, Cause: errors.New("one")},
		&HookError{Plugin: "p2", Hook: pluginapi.HookClean, Cause: errors.New("two")},
	}
	agg := &AggregateError{Op: "dispatch clean", Errors: errs}
	msg := agg.Error()
	for _, name := range []string{"p1", "p2"} {
		if !strings.Contains(msg, name) {
			t.Fatalf("aggregate message %q missing plugin %s", msg, name)
		}
	}
	assert.Contains(t, msg, fmt.Sprintf("%d plugin(s)", 2))
}
