package render

import (
	"html/template"
	"io"
)

var errorPageTemplate *template.Template

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		{{template "head"}}
		<title>Error</title>
	</head>
	<body>
		{{template "header"}}
		<div class="error"><p>{{ . }}</p></div>
		<p><a href="/">Back</a></p>
	</body>
	</html>`

	errorPageTemplate = newPage("error_page", mainTmpl, nil)
}

// RenderErrorPage shows a single user-facing message.
func RenderErrorPage(w io.Writer, message string) error {
	return errorPageTemplate.Execute(w, message)
}
