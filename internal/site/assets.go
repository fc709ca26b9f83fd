package site

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// stageThemeAssets copies the active theme's static files into the output
// root. CSS and JavaScript assets pass through the plugin transform chain,
// keyed by extension, so minifier-style plugins see them; everything else is
// copied verbatim. A theme without a source directory is fine; built-in
// templates carry no assets.
func stageThemeAssets(_ context.Context, bs *BuildState) error {
	cfg := bs.Generator.cfg
	src := filepath.Join(cfg.ThemeDir, cfg.Theme, "source")
	if _, err := os.Stat(src); os.IsNotExist(err) {
		bs.Generator.logger.Debug("Theme has no static assets", logfields.Path(src))
		return nil
	}

	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(cfg.OutputDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if err := bs.emitAsset(path, dst); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
			"copy theme assets").WithContext("source", src)
	}

	bs.Generator.logger.Debug("Theme assets copied", logfields.Count(copied))
	return nil
}

func (bs *BuildState) emitAsset(src, dst string) error {
	switch ct := pluginapi.ContentTypeForExt(filepath.Ext(src)); ct {
	case pluginapi.ContentCSS, pluginapi.ContentJavaScript:
		raw, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		out := bs.Generator.host.Transform(string(raw), ct)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, []byte(out), 0o644)
	default:
		return copyFile(src, dst)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
