package site

import (
	"context"
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/xerrors"
	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// rssDoc is an RSS 2.0 feed document.
type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// atomDoc is an Atom feed document.
type atomDoc struct {
	XMLName xml.Name    `xml:"feed"`
	XMLNS   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Author  atomAuthor  `xml:"author"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomEntry struct {
	Title   string   `xml:"title"`
	ID      string   `xml:"id"`
	Link    atomLink `xml:"link"`
	Updated string   `xml:"updated"`
	Summary string   `xml:"summary"`
}

// feedDocs caps the newest-first document list at the configured limit.
func feedDocs(docs []model.Document, limit int) []model.Document {
	if limit > 0 && len(docs) > limit {
		return docs[:limit]
	}
	return docs
}

func stageRSSFeed(_ context.Context, bs *BuildState) error {
	cfg := bs.Generator.cfg
	if !cfg.Feed.Enabled() {
		return nil
	}

	docs := feedDocs(bs.Docs, cfg.Feed.Limit)
	channel := rssChannel{
		Title:       cfg.Title,
		Link:        cfg.URL,
		Description: cfg.Description,
		Language:    cfg.Language,
	}
	if len(docs) > 0 {
		channel.LastBuildDate = docs[0].Date.Format(time.RFC1123Z)
	}
	for _, d := range docs {
		channel.Items = append(channel.Items, rssItem{
			Title:       d.Title,
			Link:        d.Permalink,
			GUID:        d.Permalink,
			PubDate:     d.Date.Format(time.RFC1123Z),
			Description: d.Excerpt,
		})
	}

	return writeXML(bs, "rss.xml", rssDoc{Version: "2.0", Channel: channel})
}

func stageAtomFeed(_ context.Context, bs *BuildState) error {
	cfg := bs.Generator.cfg
	if !cfg.Feed.Enabled() {
		return nil
	}

	docs := feedDocs(bs.Docs, cfg.Feed.Limit)
	feed := atomDoc{
		XMLNS:  "http://www.w3.org/2005/Atom",
		Title:  cfg.Title,
		ID:     cfg.URL + "/",
		Author: atomAuthor{Name: cfg.Author},
		Links: []atomLink{
			{Href: cfg.URL + "/atom.xml", Rel: "self"},
			{Href: cfg.URL + "/"},
		},
		Updated: time.Now().Format(time.RFC3339),
	}
	if len(docs) > 0 {
		feed.Updated = docs[0].Date.Format(time.RFC3339)
	}
	for _, d := range docs {
		updated := d.Date
		if d.Updated != nil {
			updated = *d.Updated
		}
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   d.Title,
			ID:      d.Permalink,
			Link:    atomLink{Href: d.Permalink},
			Updated: updated.Format(time.RFC3339),
			Summary: d.Excerpt,
		})
	}

	return writeXML(bs, "atom.xml", feed)
}

func writeXML(bs *BuildState, relPath string, doc any) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryInternal, xerrors.SeverityFatal,
			"marshal feed").WithContext("path", relPath)
	}
	return bs.writePage(relPath, xml.Header+string(data)+"\n")
}
