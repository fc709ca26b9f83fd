package theme

// defaultTemplates are the built-in layouts used when the active theme does
// not provide a file of the same name. They are deliberately plain; themes
// are expected to override them.
var defaultTemplates = map[string]string{
	"post.html": `<!DOCTYPE html>
<html lang="{{.Site.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Title}} | {{.Site.Title}}</title>
{{.Head}}
</head>
<body>
<header><h1><a href="{{.Site.Root}}">{{.Site.Title}}</a></h1></header>
<main>
<article>
<h2>{{.Document.Title}}</h2>
<time datetime="{{isoDate .Document.Date}}">{{dateFormat "2006-01-02" .Document.Date}}</time>
{{safeHTML .Document.Rendered}}
{{if .Document.Categories}}<p class="categories">{{range .Document.Categories}}<span>{{.}}</span> {{end}}</p>{{end}}
{{if .Document.Tags}}<p class="tags">{{range .Document.Tags}}<span>#{{.}}</span> {{end}}</p>{{end}}
</article>
</main>
<footer><p>&copy; {{year}} {{.Site.Author}}</p>{{.Footer}}</footer>
</body>
</html>
`,

	"index.html": `<!DOCTYPE html>
<html lang="{{.Site.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Site.Title}}</title>
{{.Head}}
</head>
<body>
<header><h1><a href="{{.Site.Root}}">{{.Site.Title}}</a></h1><p>{{.Site.Subtitle}}</p></header>
<main>
{{range .Documents}}
<article>
<h2><a href="{{$.Site.Root}}{{.Path}}">{{.Title}}</a></h2>
<time datetime="{{isoDate .Date}}">{{dateFormat "2006-01-02" .Date}}</time>
<p>{{.Excerpt}}</p>
</article>
{{end}}
<nav class="pagination">
{{if .Page.PrevPath}}<a href="{{.Site.Root}}{{.Page.PrevPath}}">Newer</a>{{end}}
<span>Page {{.Page.Current}} of {{.Page.Total}}</span>
{{if .Page.NextPath}}<a href="{{.Site.Root}}{{.Page.NextPath}}">Older</a>{{end}}
</nav>
</main>
<footer><p>&copy; {{year}} {{.Site.Author}}</p>{{.Footer}}</footer>
</body>
</html>
`,

	"taxonomy.html": `<!DOCTYPE html>
<html lang="{{.Site.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Name}} | {{.Site.Title}}</title>
{{.Head}}
</head>
<body>
<header><h1><a href="{{.Site.Root}}">{{.Site.Title}}</a></h1></header>
<main>
<h2>{{.Kind}}: {{.Name}}</h2>
<ul>
{{range .Documents}}
<li><a href="{{$.Site.Root}}{{.Path}}">{{.Title}}</a> <time>{{dateFormat "2006-01-02" .Date}}</time></li>
{{end}}
</ul>
</main>
<footer><p>&copy; {{year}} {{.Site.Author}}</p>{{.Footer}}</footer>
</body>
</html>
`,

	"taxonomy_index.html": `<!DOCTYPE html>
<html lang="{{.Site.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Title}} | {{.Site.Title}}</title>
{{.Head}}
</head>
<body>
<header><h1><a href="{{.Site.Root}}">{{.Site.Title}}</a></h1></header>
<main>
<h2>{{.Title}}</h2>
<ul>
{{range .Entries}}
<li><a href="{{$.Site.Root}}{{.Path}}">{{.Name}}</a> ({{.PostCount}})</li>
{{end}}
</ul>
</main>
<footer><p>&copy; {{year}} {{.Site.Author}}</p>{{.Footer}}</footer>
</body>
</html>
`,

	"archive.html": `<!DOCTYPE html>
<html lang="{{.Site.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Year}}-{{.Month}} | {{.Site.Title}}</title>
{{.Head}}
</head>
<body>
<header><h1><a href="{{.Site.Root}}">{{.Site.Title}}</a></h1></header>
<main>
<h2>Archive {{.Year}}-{{.Month}}</h2>
<ul>
{{range .Documents}}
<li><a href="{{$.Site.Root}}{{.Path}}">{{.Title}}</a> <time>{{dateFormat "2006-01-02" .Date}}</time></li>
{{end}}
</ul>
</main>
<footer><p>&copy; {{year}} {{.Site.Author}}</p>{{.Footer}}</footer>
</body>
</html>
`,

	"archive_index.html": `<!DOCTYPE html>
<html lang="{{.Site.Language}}">
<head>
<meta charset="utf-8">
<title>Archives | {{.Site.Title}}</title>
{{.Head}}
</head>
<body>
<header><h1><a href="{{.Site.Root}}">{{.Site.Title}}</a></h1></header>
<main>
<h2>Archives</h2>
{{range .Years}}
<h3>{{.Year}}</h3>
<ul>
{{range .Months}}
<li><a href="{{$.Site.Root}}{{.Path}}">{{.Year}}-{{.Month}}</a> ({{.Count}})</li>
{{end}}
</ul>
{{end}}
</main>
<footer><p>&copy; {{year}} {{.Site.Author}}</p>{{.Footer}}</footer>
</body>
</html>
`,
}
