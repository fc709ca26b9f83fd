package site

import (
	"context"

	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// stagePostPages renders one page per document. The render hooks bracket
// the whole batch; per-document failures are fatal because a half-written
// site is worse than a failed build.
func stagePostPages(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	g.dispatch(pluginapi.HookBeforePostRender, bs.Report)

	for _, doc := range bs.Docs {
		data := bs.pageData(doc.Title)
		data["Document"] = doc
		html, err := bs.renderer.Render("post.html", data)
		if err != nil {
			return err
		}
		if err := bs.writePage(doc.Path, html); err != nil {
			return err
		}
	}

	g.dispatch(pluginapi.HookAfterPostRender, bs.Report)
	return nil
}
