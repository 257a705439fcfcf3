package render

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed static
var staticFiles embed.FS

// Static is the stylesheet tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

const layoutTmpl = `
{{define "head"}}
	<meta charset="utf-8">
	<link href="/static/style.css" rel="stylesheet">
{{end}}
{{define "header"}}
	<header class="app-header">
		<h1 class="app-name"><a href="/">Protein Literature Assistant</a></h1>
		<nav class="app-nav">
			<a href="/">Analyze</a>
			<a href="/conservation">Conservation</a>
			<a href="/history">History</a>
		</nav>
	</header>
{{end}}
{{define "warnings"}}
	{{ if . }}
	<div class="warnings">
		<ul>{{ range . }}<li>{{ . }}</li>{{ end }}</ul>
	</div>
	{{ end }}
{{end}}
`

var baseFuncs = template.FuncMap{
	"mul": func(a, b int) int { return a * b },
	"add": func(a, b int) int { return a + b },
}

// newPage parses a page body together with the shared layout blocks.
func newPage(name, body string, extra template.FuncMap) *template.Template {
	t := template.New(name).Funcs(baseFuncs)
	if extra != nil {
		t = t.Funcs(extra)
	}
	template.Must(t.Parse(body))
	// whitespace outside the defines does not replace the page body
	return template.Must(t.Parse(layoutTmpl))
}
