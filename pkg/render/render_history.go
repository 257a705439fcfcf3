package render

import (
	"html/template"
	"io"
	"time"

	"github.com/yumyai/protlit/pkg/db"
)

var historyPageTemplate *template.Template

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		{{template "head"}}
		<title>Analysis history</title>
	</head>
	<body>
		{{template "header"}}
		<h2>Previous analyses</h2>
		{{ if . }}
		<table>
			<tr>
				<th>When</th>
				<th>PDB ID</th>
				<th>Title</th>
				<th>UniProt</th>
				<th>Hotspots</th>
				<th>Warnings</th>
			</tr>
			{{ range . }}
			<tr>
				<td>{{ formatTime .CreatedAt }}</td>
				<td><a href="/history/{{ .ID }}">{{ .PDBID }}</a></td>
				<td>{{ .Title }}</td>
				<td>{{ if .UniProtID }}{{ .UniProtID }}{{ else }}<span class="muted">none</span>{{ end }}</td>
				<td>{{ .HotspotCount }}</td>
				<td>{{ .WarningCount }}</td>
			</tr>
			{{ end }}
		</table>
		{{ else }}
		<p class="muted">Nothing analyzed yet.</p>
		{{ end }}
	</body>
	</html>`

	historyPageTemplate = newPage("history_page", mainTmpl, template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
	})
}

func RenderHistoryPage(w io.Writer, entries []db.HistoryEntry) error {
	return historyPageTemplate.Execute(w, entries)
}
