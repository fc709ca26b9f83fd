// Package theme renders pages through html/template layouts, with built-in
// fallback templates so a site builds before it has a theme.
package theme

import (
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// Renderer is the surface the generation pipeline consumes.
type Renderer interface {
	// Render executes the named layout with the given data and returns HTML.
	Render(name string, data map[string]any) (string, error)
}

// TemplateRenderer implements Renderer on html/template. Layouts load from
// `<themes>/<theme>/layout/*.html`; any name missing there falls back to the
// built-in default of the same name.
type TemplateRenderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// New loads the theme's layout templates. extraFuncs (typically the plugin
// template-function bridge) merges over the base function set; plugin
// functions win on collision.
func New(themesDir, theme string, extraFuncs template.FuncMap, logger *slog.Logger) (*TemplateRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	funcs := baseFuncs()
	for name, fn := range extraFuncs {
		funcs[name] = fn
	}

	root := template.New("").Funcs(funcs)

	// Defaults first so theme files of the same name override them.
	for name, text := range defaultTemplates {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, xerrors.Wrap(err, xerrors.CategoryRender, xerrors.SeverityFatal,
				"parse built-in template").WithContext("template", name)
		}
	}

	pattern := filepath.Join(themesDir, theme, "layout", "*.html")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CategoryRender, xerrors.SeverityFatal, "glob theme layouts")
	}
	if len(files) > 0 {
		if _, err := root.ParseFiles(files...); err != nil {
			return nil, xerrors.Wrap(err, xerrors.CategoryRender, xerrors.SeverityFatal,
				"parse theme layouts").WithContext("theme", theme)
		}
		logger.Info("Theme layouts loaded", slog.String("theme", theme), logfields.Count(len(files)))
	} else {
		logger.Info("No theme layouts found, using built-in templates", slog.String("theme", theme))
	}

	return &TemplateRenderer{templates: root, logger: logger}, nil
}

// Render executes the named layout.
func (r *TemplateRenderer) Render(name string, data map[string]any) (string, error) {
	tpl := r.templates.Lookup(name)
	if tpl == nil {
		return "", xerrors.New(xerrors.CategoryRender, xerrors.SeverityError,
			fmt.Sprintf("unknown template %q", name))
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", xerrors.Wrap(err, xerrors.CategoryRender, xerrors.SeverityError,
			"execute template").WithContext("template", name)
	}
	return sb.String(), nil
}
