package site

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// Pagination describes one index page's position in the sequence.
type Pagination struct {
	Current  int
	Total    int
	PrevPath string // empty on the first page
	NextPath string // empty on the last page
}

// PageCount returns ceil(total/perPage), never less than 1: an empty site
// still gets an index page.
func PageCount(total, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	n := (total + perPage - 1) / perPage
	if n < 1 {
		n = 1
	}
	return n
}

// PageSlice bounds page n (1-based) into docs.
func PageSlice(docs []model.Document, n, perPage int) []model.Document {
	start := (n - 1) * perPage
	if start >= len(docs) {
		return nil
	}
	end := start + perPage
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

// indexPagePath returns the output path for index page n.
func indexPagePath(n int) string {
	if n == 1 {
		return "index.html"
	}
	return fmt.Sprintf("page/%d/index.html", n)
}

// stageIndexPages writes the paginated front index: index.html is page 1,
// later pages land at page/<n>/index.html.
func stageIndexPages(_ context.Context, bs *BuildState) error {
	perPage := bs.Generator.cfg.PerPage
	total := PageCount(len(bs.Docs), perPage)

	for n := 1; n <= total; n++ {
		page := Pagination{Current: n, Total: total}
		if n > 1 {
			page.PrevPath = indexPagePath(n - 1)
		}
		if n < total {
			page.NextPath = indexPagePath(n + 1)
		}

		data := bs.pageData(bs.Generator.cfg.Title)
		data["Documents"] = PageSlice(bs.Docs, n, perPage)
		data["Page"] = page

		html, err := bs.renderer.Render("index.html", data)
		if err != nil {
			return err
		}
		if err := bs.writePage(indexPagePath(n), html); err != nil {
			return err
		}
	}
	return nil
}
