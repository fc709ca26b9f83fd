package site

import (
	"context"
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// SearchEntry is one document in search/search.json.
type SearchEntry struct {
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	Content    string   `json:"content"`
	Date       string   `json:"date"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// stageSearchIndex emits the client-side search index. Content is the
// excerpt unless full_content is configured, in which case the whole
// rendered text goes in (tag-stripped either way).
func stageSearchIndex(_ context.Context, bs *BuildState) error {
	cfg := bs.Generator.cfg
	if !cfg.Search.Enabled() {
		return nil
	}

	entries := make([]SearchEntry, 0, len(bs.Docs))
	for _, d := range bs.Docs {
		text := d.Excerpt
		if cfg.Search.FullContent {
			text = markdown.StripTags(d.Rendered)
		}
		entries = append(entries, SearchEntry{
			Title:      d.Title,
			Path:       d.Path,
			Content:    text,
			Date:       d.Date.Format(time.RFC3339),
			Categories: append([]string{}, d.Categories...),
			Tags:       append([]string{}, d.Tags...),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryInternal, xerrors.SeverityFatal, "marshal search index")
	}
	return bs.writePage("search/search.json", string(data))
}
