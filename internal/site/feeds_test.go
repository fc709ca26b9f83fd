package site

import (
	"context"
	"encoding/xml"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/pkg/model"
)

func feedTestState(t *testing.T, cfg *config.Config) *BuildState {
	t.Helper()
	if cfg.OutputDir == "" || cfg.OutputDir == "public" {
		cfg.OutputDir = t.TempDir()
	}
	g := &Generator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
	return &BuildState{Generator: g, Report: newBuildReport()}
}

func feedFixtureDocs() []model.Document {
	updated := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return []model.Document{
		{
			Title:     "Newest",
			Date:      time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
			Updated:   &updated,
			Path:      "posts/newest.html",
			Permalink: "https://example.com/posts/newest.html",
			Excerpt:   "newest excerpt",
		},
		{
			Title:     "Middle",
			Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Path:      "posts/middle.html",
			Permalink: "https://example.com/posts/middle.html",
			Excerpt:   "middle excerpt",
		},
		{
			Title:     "Oldest",
			Date:      time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			Path:      "posts/oldest.html",
			Permalink: "https://example.com/posts/oldest.html",
			Excerpt:   "oldest excerpt",
		},
	}
}

func TestRSSFeedWellFormedAndLimited(t *testing.T) {
	cfg := config.Default()
	cfg.Title = "Feed Site"
	cfg.URL = "https://example.com"
	cfg.Feed.Limit = 2

	bs := feedTestState(t, cfg)
	bs.Docs = feedFixtureDocs()

	require.NoError(t, stageRSSFeed(context.Background(), bs))

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, "rss.xml"))
	require.NoError(t, err)

	var doc rssDoc
	require.NoError(t, xml.Unmarshal(raw, &doc))
	assert.Equal(t, "2.0", doc.Version)
	assert.Equal(t, "Feed Site", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "Newest", doc.Channel.Items[0].Title)
	assert.Equal(t, "Middle", doc.Channel.Items[1].Title)
	assert.Equal(t, "https://example.com/posts/newest.html", doc.Channel.Items[0].Link)
	assert.NotEmpty(t, doc.Channel.LastBuildDate)
}

func TestAtomFeedUsesUpdatedTimestamp(t *testing.T) {
	cfg := config.Default()
	cfg.URL = "https://example.com"

	bs := feedTestState(t, cfg)
	bs.Docs = feedFixtureDocs()

	require.NoError(t, stageAtomFeed(context.Background(), bs))

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, "atom.xml"))
	require.NoError(t, err)

	var feed atomDoc
	require.NoError(t, xml.Unmarshal(raw, &feed))
	require.Len(t, feed.Entries, 3)
	// First entry carries its explicit updated date, not the publish date.
	assert.Equal(t, "2025-02-01T00:00:00Z", feed.Entries[0].Updated)
	assert.Equal(t, "2024-06-01T00:00:00Z", feed.Entries[1].Updated)
}

func TestFeedsDisabled(t *testing.T) {
	off := false
	cfg := config.Default()
	cfg.Feed.Enable = &off

	bs := feedTestState(t, cfg)
	bs.Docs = feedFixtureDocs()

	require.NoError(t, stageRSSFeed(context.Background(), bs))
	require.NoError(t, stageAtomFeed(context.Background(), bs))

	_, err := os.Stat(filepath.Join(cfg.OutputDir, "rss.xml"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "atom.xml"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, bs.Report.PagesRendered)
}

func TestFeedDocsLimit(t *testing.T) {
	docs := feedFixtureDocs()
	assert.Len(t, feedDocs(docs, 0), 3)
	assert.Len(t, feedDocs(docs, 5), 3)
	assert.Len(t, feedDocs(docs, 1), 1)
}
