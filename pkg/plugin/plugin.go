// Package plugin defines the ABI between the generator and native plugins.
// Plugins are built with `go build -buildmode=plugin` against this package
// and must export a factory:
//
//	func NewPlugin() plugin.Plugin
//
// The host looks the symbol up by name after opening the library.
package plugin

// FactorySymbol is the exported symbol the host resolves in every plugin library.
const FactorySymbol = "NewPlugin"

// Plugin is the contract every dynamic plugin implements.
//
// All methods are called from the generator's goroutine. Implementations do
// not need to be concurrency-safe but must not retain the Context beyond Init.
type Plugin interface {
	// Name identifies the plugin. The host normalizes underscores to hyphens,
	// so "word_count" and "word-count" register under the same name.
	Name() string

	// Version is the plugin's own version string, for diagnostics only.
	Version() string

	// Description is a one-line human-readable summary.
	Description() string

	// Init is called once after loading, before any other method. Returning
	// an error discards the instance; the library stays mapped.
	Init(ctx *Context) error

	// ExecuteHook is called for every dispatched lifecycle hook. Plugins
	// ignore hooks they have no interest in by returning nil.
	ExecuteHook(hook Hook) error

	// ProcessContent transforms content of the given type, returning the
	// replacement. Returning an error leaves the input unchanged for the
	// next plugin in the chain.
	ProcessContent(content string, contentType ContentType) (string, error)

	// Resources lists assets the plugin wants injected into rendered pages.
	Resources() []Resource

	// TemplateFuncs exposes functions to the template renderer. Later
	// registrations win on name collisions.
	TemplateFuncs() map[string]TemplateFunc

	// Cleanup is called when the host shuts down or reloads. The library
	// itself cannot be unmapped; Cleanup is the instance's last word.
	Cleanup() error
}

// TemplateFunc is a plugin-provided template helper. Arguments arrive as a
// name→value map with plain JSON-like values (string, bool, float64, []any,
// map[string]any); the return value is normalized the same way before it
// reaches a template.
type TemplateFunc func(args map[string]any) (any, error)

// ResourceLocation says where in a page an injected asset belongs.
type ResourceLocation string

const (
	LocationHead   ResourceLocation = "head"
	LocationFooter ResourceLocation = "footer"
)

// Resource is an HTML fragment (script/style/link tag) a plugin injects
// into every rendered page at the given location.
type Resource struct {
	HTML     string
	Location ResourceLocation
}

// Base provides no-op defaults for the optional surface of Plugin.
// Plugins embed it and override what they need.
type Base struct{}

func (Base) Init(*Context) error                    { return nil }
func (Base) ExecuteHook(Hook) error                 { return nil }
func (Base) Resources() []Resource                  { return nil }
func (Base) TemplateFuncs() map[string]TemplateFunc { return nil }
func (Base) Cleanup() error                         { return nil }

// ProcessContent is the identity transform, for plugins that only hook.
func (Base) ProcessContent(content string, _ ContentType) (string, error) {
	return content, nil
}
