package plugin

import "strings"

// ContentType identifies what kind of content is passing through a transform.
type ContentType string

const (
	ContentMarkdown   ContentType = "markdown"
	ContentHTML       ContentType = "html"
	ContentJSON       ContentType = "json"
	ContentYAML       ContentType = "yaml"
	ContentCSS        ContentType = "css"
	ContentJavaScript ContentType = "javascript"
	ContentPlain      ContentType = "plain"
)

// IsValid reports whether t is one of the defined content types.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentMarkdown, ContentHTML, ContentJSON, ContentYAML,
		ContentCSS, ContentJavaScript, ContentPlain:
		return true
	}
	return false
}

// ContentTypeForExt maps a file extension (with or without the leading dot)
// to a ContentType, defaulting to ContentPlain.
func ContentTypeForExt(ext string) ContentType {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "md", "markdown":
		return ContentMarkdown
	case "html", "htm":
		return ContentHTML
	case "json":
		return ContentJSON
	case "yaml", "yml":
		return ContentYAML
	case "css":
		return ContentCSS
	case "js", "mjs":
		return ContentJavaScript
	default:
		return ContentPlain
	}
}

func (t ContentType) String() string { return string(t) }
