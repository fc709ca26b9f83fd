package site

import (
	"context"
	"slices"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// stageCategoryPages writes one listing per category plus the category index.
func stageCategoryPages(_ context.Context, bs *BuildState) error {
	for _, cat := range bs.Categories {
		docs := docsWith(bs.Docs, func(d model.Document) bool {
			return slices.Contains(d.Categories, cat.Name)
		})
		data := bs.pageData(cat.Name)
		data["Kind"] = "Category"
		data["Name"] = cat.Name
		data["Documents"] = docs
		html, err := bs.renderer.Render("taxonomy.html", data)
		if err != nil {
			return err
		}
		if err := bs.writePage(cat.Path, html); err != nil {
			return err
		}
	}

	data := bs.pageData("Categories")
	data["Entries"] = bs.Categories
	html, err := bs.renderer.Render("taxonomy_index.html", data)
	if err != nil {
		return err
	}
	return bs.writePage("categories/index.html", html)
}

// stageTagPages mirrors stageCategoryPages for tags.
func stageTagPages(_ context.Context, bs *BuildState) error {
	for _, tag := range bs.Tags {
		docs := docsWith(bs.Docs, func(d model.Document) bool {
			return slices.Contains(d.Tags, tag.Name)
		})
		data := bs.pageData(tag.Name)
		data["Kind"] = "Tag"
		data["Name"] = tag.Name
		data["Documents"] = docs
		html, err := bs.renderer.Render("taxonomy.html", data)
		if err != nil {
			return err
		}
		if err := bs.writePage(tag.Path, html); err != nil {
			return err
		}
	}

	data := bs.pageData("Tags")
	data["Entries"] = bs.Tags
	html, err := bs.renderer.Render("taxonomy_index.html", data)
	if err != nil {
		return err
	}
	return bs.writePage("tags/index.html", html)
}

// docsWith filters while preserving the newest-first order.
func docsWith(docs []model.Document, keep func(model.Document) bool) []model.Document {
	var out []model.Document
	for _, d := range docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
