package site

import (
	"context"
	"html/template"

	"git.home.luguber.info/inful/sitegen/internal/theme"
	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// StageName identifies a pipeline stage for reports, logs and metrics.
type StageName string

const (
	StagePrepareOutput StageName = "prepare_output"
	StageLoadContent   StageName = "load_content"
	StageClassify      StageName = "classify"
	StagePostPages     StageName = "post_pages"
	StageIndexPages    StageName = "index_pages"
	StageCategoryPages StageName = "category_pages"
	StageTagPages      StageName = "tag_pages"
	StageArchivePages  StageName = "archive_pages"
	StageRSSFeed       StageName = "rss_feed"
	StageAtomFeed      StageName = "atom_feed"
	StageSearchIndex   StageName = "search_index"
	StageThemeAssets   StageName = "theme_assets"
)

// StageFn is a single pipeline stage. A returned error is fatal and aborts
// the run; recoverable problems go into the report as warnings instead.
type StageFn func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage with its name for reporting.
type StageDef struct {
	Name StageName
	Fn   StageFn
}

// BuildState carries everything stages need for one run.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport

	// Filled by the load/classify stages, newest first.
	Docs       []model.Document
	Categories []model.Category
	Tags       []model.Tag

	// Plugin-injected page fragments, assembled once per run.
	Head   template.HTML
	Footer template.HTML

	renderer theme.Renderer
}

// PipelineBuilder assembles a stage list fluently.
type PipelineBuilder struct {
	stages []StageDef
}

func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{}
}

func (b *PipelineBuilder) Add(name StageName, fn StageFn) *PipelineBuilder {
	b.stages = append(b.stages, StageDef{Name: name, Fn: fn})
	return b
}

func (b *PipelineBuilder) Build() []StageDef {
	return b.stages
}
