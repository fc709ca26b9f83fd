package plugin

import (
	"log/slog"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// Context is the read-only snapshot of site state handed to plugins at Init
// and refreshed by the host before each generation run. Plugins must treat
// it as immutable; the host hands every plugin its own deep copy of the
// document collections.
type Context struct {
	// Directories, all absolute.
	BaseDir    string
	PluginsDir string
	ThemeDir   string
	OutputDir  string

	// Site is a copy of the site configuration.
	Site model.Site

	// Documents, Categories and Tags reflect the store at snapshot time.
	// Empty (not nil) when the snapshot was taken before loading.
	Documents  []model.Document
	Categories []model.Category
	Tags       []model.Tag

	// Logger is namespaced per plugin by the host.
	Logger *slog.Logger
}

// Clone deep-copies the context so each plugin gets independent collections.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	out.Documents = make([]model.Document, len(c.Documents))
	for i, d := range c.Documents {
		out.Documents[i] = d.Clone()
	}
	out.Categories = append([]model.Category(nil), c.Categories...)
	out.Tags = append([]model.Tag(nil), c.Tags...)
	return &out
}
