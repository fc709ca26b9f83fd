// Package model holds the content data model shared between the generator
// internals and the plugin ABI. It lives under pkg/ because out-of-tree
// plugin builds must be able to import these types.
package model

import "time"

// Document is a single source document flowing through the pipeline.
// Identity is the Source path; everything else is derived per build.
type Document struct {
	// Title from frontmatter, falling back to the source filename.
	Title string

	// Date from frontmatter, falling back to the file modification time.
	Date time.Time

	// Updated is nil unless the frontmatter carries an `updated` field.
	Updated *time.Time

	// Source is the path of the file the document was loaded from,
	// relative to the site source directory.
	Source string

	// Path is the output path relative to the site root, e.g. "posts/hello.html".
	Path string

	// Permalink is the absolute URL of the rendered page.
	Permalink string

	// Body is the Markdown body after frontmatter removal and after the
	// Markdown-stage plugin transform.
	Body string

	// Rendered is the HTML produced from Body, after the HTML-stage plugin
	// transform. Empty until the pipeline has run.
	Rendered string

	// Excerpt is a short plain-text summary derived from Rendered.
	Excerpt string

	// FrontMatter is the parsed YAML frontmatter map, unmodified.
	FrontMatter map[string]any

	// Categories and Tags are populated only by classification.
	Categories []string
	Tags       []string
}

// Clone returns a deep copy so plugin snapshots cannot alias store state.
func (d Document) Clone() Document {
	out := d
	if d.Updated != nil {
		u := *d.Updated
		out.Updated = &u
	}
	if d.FrontMatter != nil {
		fm := make(map[string]any, len(d.FrontMatter))
		for k, v := range d.FrontMatter {
			fm[k] = v
		}
		out.FrontMatter = fm
	}
	out.Categories = append([]string(nil), d.Categories...)
	out.Tags = append([]string(nil), d.Tags...)
	return out
}

// Category groups documents by a frontmatter `categories` entry.
// Identity is the name; slug and path are derived.
type Category struct {
	Name      string
	Slug      string
	Path      string
	PostCount int
}

// Tag groups documents by a frontmatter `tags` entry.
type Tag struct {
	Name      string
	Slug      string
	Path      string
	PostCount int
}

// Site is the read-only site configuration view handed to plugins and templates.
type Site struct {
	Title       string
	Subtitle    string
	Description string
	Author      string
	Language    string
	Timezone    string
	URL         string
	Root        string
	Theme       string
	PerPage     int
}
