package theme

import (
	"html/template"
	"strings"
	"time"
)

// baseFuncs is the function set every layout can rely on regardless of the
// active theme or plugins.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"dateFormat": func(layout string, t time.Time) string {
			return t.Format(layout)
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"year": func() int {
			return time.Now().Year()
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		// Rendered document bodies are already HTML; templates opt in explicitly.
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}
