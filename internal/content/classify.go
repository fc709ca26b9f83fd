package content

import (
	"fmt"
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// Classify derives per-document categories/tags from frontmatter and rebuilds
// the store's taxonomy collections. It is idempotent; running it twice over
// the same documents produces identical collections.
func (s *Store) Classify(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catCounts := map[string]int{}
	tagCounts := map[string]int{}

	for i := range s.documents {
		doc := &s.documents[i]
		doc.Categories = taxonomyNames(doc.FrontMatter["categories"], "categories", doc.Source, logger)
		doc.Tags = taxonomyNames(doc.FrontMatter["tags"], "tags", doc.Source, logger)
		for _, c := range doc.Categories {
			catCounts[c]++
		}
		for _, t := range doc.Tags {
			tagCounts[t]++
		}
	}

	s.categories = make([]model.Category, 0, len(catCounts))
	for name, n := range catCounts {
		slug := Slugify(name)
		s.categories = append(s.categories, model.Category{
			Name:      name,
			Slug:      slug,
			Path:      "categories/" + slug + "/index.html",
			PostCount: n,
		})
	}
	sort.Slice(s.categories, func(i, j int) bool { return s.categories[i].Name < s.categories[j].Name })

	s.tags = make([]model.Tag, 0, len(tagCounts))
	for name, n := range tagCounts {
		slug := Slugify(name)
		s.tags = append(s.tags, model.Tag{
			Name:      name,
			Slug:      slug,
			Path:      "tags/" + slug + "/index.html",
			PostCount: n,
		})
	}
	sort.Slice(s.tags, func(i, j int) bool { return s.tags[i].Name < s.tags[j].Name })
}

// taxonomyNames accepts the two frontmatter shapes in the wild: a single
// scalar or a list of scalars. Anything else is dropped with a warning so
// the operator can see why a document ended up unclassified.
func taxonomyNames(v any, field, source string, logger *slog.Logger) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		names := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := scalarString(item)
			if !ok {
				logger.Warn("Dropping malformed taxonomy entry",
					logfields.Document(source),
					slog.String("field", field),
					slog.String("entry", fmt.Sprintf("%T", item)))
				continue
			}
			if s != "" {
				names = append(names, s)
			}
		}
		if len(names) == 0 {
			return nil
		}
		return names
	default:
		if s, ok := scalarString(v); ok {
			if s == "" {
				return nil
			}
			return []string{s}
		}
		logger.Warn("Dropping malformed taxonomy field",
			logfields.Document(source),
			slog.String("field", field),
			slog.String("shape", fmt.Sprintf("%T", v)))
		return nil
	}
}

// scalarString renders YAML scalar types as names; composites are rejected.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return fmt.Sprintf("%d", val), true
	case int64:
		return fmt.Sprintf("%d", val), true
	case float64:
		return fmt.Sprintf("%g", val), true
	case bool:
		return fmt.Sprintf("%t", val), true
	default:
		return "", false
	}
}
