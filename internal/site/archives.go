package site

import (
	"context"
	"sort"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// ArchiveMonth is one month's bucket in the archive tree.
type ArchiveMonth struct {
	Year  string
	Month string
	Path  string
	Count int
}

// ArchiveYear groups months for the archive index, newest year first.
type ArchiveYear struct {
	Year   string
	Months []ArchiveMonth
}

// archiveBuckets groups documents by year and month of their date.
func archiveBuckets(docs []model.Document) ([]ArchiveYear, map[string][]model.Document) {
	byMonth := map[string][]model.Document{}
	for _, d := range docs {
		key := d.Date.Format("2006/01")
		byMonth[key] = append(byMonth[key], d)
	}

	byYear := map[string][]ArchiveMonth{}
	for key, bucket := range byMonth {
		year, month := key[:4], key[5:]
		byYear[year] = append(byYear[year], ArchiveMonth{
			Year:  year,
			Month: month,
			Path:  "archives/" + year + "/" + month + ".html",
			Count: len(bucket),
		})
	}

	years := make([]ArchiveYear, 0, len(byYear))
	for year, months := range byYear {
		sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })
		years = append(years, ArchiveYear{Year: year, Months: months})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year > years[j].Year })
	return years, byMonth
}

// stageArchivePages writes archives/<year>/<month>.html per bucket plus the
// archive index.
func stageArchivePages(_ context.Context, bs *BuildState) error {
	years, byMonth := archiveBuckets(bs.Docs)

	for _, y := range years {
		for _, m := range y.Months {
			data := bs.pageData("Archive " + m.Year + "-" + m.Month)
			data["Year"] = m.Year
			data["Month"] = m.Month
			data["Documents"] = byMonth[m.Year+"/"+m.Month]
			html, err := bs.renderer.Render("archive.html", data)
			if err != nil {
				return err
			}
			if err := bs.writePage(m.Path, html); err != nil {
				return err
			}
		}
	}

	data := bs.pageData("Archives")
	data["Years"] = years
	html, err := bs.renderer.Render("archive_index.html", data)
	if err != nil {
		return err
	}
	return bs.writePage("archives/index.html", html)
}
