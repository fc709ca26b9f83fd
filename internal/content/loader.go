package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
	"git.home.luguber.info/inful/sitegen/pkg/model"
	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// TransformFunc applies the plugin transform chain to content of a given
// type. Loader takes it as a seam so it has no dependency on the host.
type TransformFunc func(content string, contentType pluginapi.ContentType) string

// Loader reads Markdown documents from the source tree and turns them into
// fully rendered documents.
type Loader struct {
	SourceDir string
	BaseURL   string
	Transform TransformFunc
	Logger    *slog.Logger
}

// dateFormats are tried in order when parsing frontmatter date fields.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Load walks `<source>/_posts` and parses every Markdown file. A document
// that fails to parse is logged and skipped; only filesystem-level failures
// abort the load. The returned slice is sorted by date, newest first.
func (l *Loader) Load() ([]model.Document, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	transformFn := l.Transform
	if transformFn == nil {
		transformFn = func(c string, _ pluginapi.ContentType) string { return c }
	}

	postsDir := filepath.Join(l.SourceDir, "_posts")
	if _, err := os.Stat(postsDir); os.IsNotExist(err) {
		logger.Warn("Posts directory does not exist", logfields.Path(postsDir))
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(postsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".markdown" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityFatal,
			"walk posts directory").WithContext("path", postsDir)
	}
	sort.Strings(files)

	docs := make([]model.Document, 0, len(files))
	for _, path := range files {
		doc, err := l.loadOne(path, transformFn)
		if err != nil {
			logger.Warn("Skipping document", logfields.Document(path), logfields.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Date.After(docs[j].Date) })
	logger.Info("Content loaded", logfields.Count(len(docs)), logfields.Path(postsDir))
	return docs, nil
}

func (l *Loader) loadOne(path string, transformFn TransformFunc) (model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityError, "read document")
	}

	fm, body, _, _, err := frontmatter.Split(raw)
	if err != nil {
		return model.Document{}, xerrors.Wrap(err, xerrors.CategoryContent, xerrors.SeverityWarning, "split frontmatter")
	}
	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return model.Document{}, xerrors.Wrap(err, xerrors.CategoryContent, xerrors.SeverityWarning, "parse frontmatter")
	}

	rel, err := filepath.Rel(l.SourceDir, path)
	if err != nil {
		rel = path
	}

	doc := model.Document{
		Source:      filepath.ToSlash(rel),
		FrontMatter: fields,
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc.Title = stem
	if t, ok := fields["title"].(string); ok && t != "" {
		doc.Title = t
	}

	doc.Date = fileModTime(path)
	if parsed, ok := parseDate(fields["date"]); ok {
		doc.Date = parsed
	}
	if parsed, ok := parseDate(fields["updated"]); ok {
		doc.Updated = &parsed
	}

	// Markdown-stage transform runs on the body, then conversion, then the
	// HTML-stage transform on the result.
	doc.Body = transformFn(string(body), pluginapi.ContentMarkdown)
	rendered, err := markdown.ToHTML([]byte(doc.Body))
	if err != nil {
		return model.Document{}, xerrors.Wrap(err, xerrors.CategoryContent, xerrors.SeverityWarning, "render markdown")
	}
	doc.Rendered = transformFn(string(rendered), pluginapi.ContentHTML)
	doc.Excerpt = markdown.Excerpt(doc.Rendered, markdown.DefaultExcerptLength)

	slug := Slugify(stem)
	doc.Path = "posts/" + slug + ".html"
	doc.Permalink = joinURL(l.BaseURL, doc.Path)
	return doc, nil
}

func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
