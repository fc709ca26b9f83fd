package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

func docWithFrontmatter(source string, fm map[string]any) model.Document {
	return model.Document{Source: source, Title: source, FrontMatter: fm}
}

func TestClassifyScalarAndListForms(t *testing.T) {
	store := NewStore()
	store.SetDocuments([]model.Document{
		docWithFrontmatter("a.md", map[string]any{"categories": "go", "tags": []any{"build", "tools"}}),
		docWithFrontmatter("b.md", map[string]any{"categories": []any{"go", "web"}}),
		docWithFrontmatter("c.md", map[string]any{}),
	})

	store.Classify(nil)

	docs := store.Documents()
	assert.Equal(t, []string{"go"}, docs[0].Categories)
	assert.Equal(t, []string{"build", "tools"}, docs[0].Tags)
	assert.Equal(t, []string{"go", "web"}, docs[1].Categories)
	assert.Empty(t, docs[2].Categories)
	assert.Empty(t, docs[2].Tags)

	cats := store.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "go", cats[0].Name)
	assert.Equal(t, 2, cats[0].PostCount)
	assert.Equal(t, "web", cats[1].Name)
	assert.Equal(t, 1, cats[1].PostCount)

	tags := store.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, "build", tags[0].Name)
	assert.Equal(t, "tools", tags[1].Name)
}

func TestClassifyMalformedShapesDropped(t *testing.T) {
	store := NewStore()
	store.SetDocuments([]model.Document{
		docWithFrontmatter("bad.md", map[string]any{
			"categories": []any{[]any{"nested"}, "kept"},
			"tags":       map[string]any{"not": "a list"},
		}),
	})

	store.Classify(nil)

	docs := store.Documents()
	assert.Equal(t, []string{"kept"}, docs[0].Categories, "well-formed entries survive next to malformed ones")
	assert.Empty(t, docs[0].Tags)
}

func TestClassifyNumericScalarsBecomeNames(t *testing.T) {
	store := NewStore()
	store.SetDocuments([]model.Document{
		docWithFrontmatter("y.md", map[string]any{"categories": 2024}),
	})
	store.Classify(nil)
	assert.Equal(t, []string{"2024"}, store.Documents()[0].Categories)
}

func TestClassifyIdempotent(t *testing.T) {
	store := NewStore()
	store.SetDocuments([]model.Document{
		docWithFrontmatter("a.md", map[string]any{"categories": []any{"x", "y"}, "tags": "t"}),
		docWithFrontmatter("b.md", map[string]any{"categories": "x"}),
	})

	store.Classify(nil)
	firstDocs := store.Documents()
	firstCats := store.Categories()
	firstTags := store.Tags()

	store.Classify(nil)
	assert.Equal(t, firstDocs, store.Documents())
	assert.Equal(t, firstCats, store.Categories())
	assert.Equal(t, firstTags, store.Tags())
}

func TestClassifyPathsUseSlugs(t *testing.T) {
	store := NewStore()
	store.SetDocuments([]model.Document{
		docWithFrontmatter("a.md", map[string]any{"categories": "Web Dev"}),
	})
	store.Classify(nil)

	cats := store.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "web-dev", cats[0].Slug)
	assert.Equal(t, "categories/web-dev/index.html", cats[0].Path)
}
