package site

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 5}, // perPage clamps to 1
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PageCount(tc.total, tc.perPage),
			"PageCount(%d, %d)", tc.total, tc.perPage)
	}
}

func TestIndexPagePath(t *testing.T) {
	assert.Equal(t, "index.html", indexPagePath(1))
	assert.Equal(t, "page/2/index.html", indexPagePath(2))
	assert.Equal(t, "page/17/index.html", indexPagePath(17))
}

func TestPageSliceOutOfRange(t *testing.T) {
	docs := []model.Document{{Title: "a"}, {Title: "b"}}
	assert.Nil(t, PageSlice(docs, 3, 2))
	assert.Len(t, PageSlice(docs, 1, 10), 2)
}

func TestPaginationCoversEveryDocumentExactlyOnce(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200

	properties := gopter.NewProperties(params)

	properties.Property("pages partition the document list in order", prop.ForAll(
		func(total, perPage int) bool {
			docs := make([]model.Document, total)
			for i := range docs {
				docs[i].Source = fmt.Sprintf("doc-%d", i)
			}

			pages := PageCount(total, perPage)
			var seen []model.Document
			for n := 1; n <= pages; n++ {
				slice := PageSlice(docs, n, perPage)
				if n < pages && len(slice) != perPage {
					return false // only the last page may be short
				}
				seen = append(seen, slice...)
			}

			if len(seen) != total {
				return false
			}
			for i, d := range seen {
				if d.Source != docs[i].Source {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 300),
		gen.IntRange(1, 40),
	))

	properties.Property("page count is the ceiling division", prop.ForAll(
		func(total, perPage int) bool {
			want := total / perPage
			if total%perPage != 0 {
				want++
			}
			if want < 1 {
				want = 1
			}
			return PageCount(total, perPage) == want
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}
