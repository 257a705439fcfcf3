package render

import (
	"html/template"
	"io"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
)

var blastPageTemplate *template.Template

// BlastPageData describes the state of a BLAST job for rendering.
type BlastPageData struct {
	JobID                  string
	Program                string
	Database               string
	QueryLabel             string
	RID                    string
	Status                 string
	BlastReport            string
	ErrorMessage           string
	ShouldRefresh          bool
	RefreshIntervalSeconds int
}

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		{{template "head"}}
		<title>BLAST {{ .JobID }}</title>
		{{ if .ShouldRefresh }}
		<script>
			setTimeout(function () { window.location.reload(); }, {{ mul .RefreshIntervalSeconds 1000 }});
		</script>
		{{ end }}
	</head>
	<body>
		{{template "header"}}
		<p><strong>Job ID:</strong> {{ .JobID }}</p>
		<p><strong>Query:</strong> {{ .QueryLabel }}</p>
		<p><strong>Program:</strong> {{ .Program }} against {{ .Database }}</p>
		{{ if .RID }}<p><strong>NCBI RID:</strong> {{ .RID }}</p>{{ end }}
		<p><strong>Status:</strong> {{ .Status }}</p>
		{{ if .ErrorMessage }}
			<div class="error">{{ .ErrorMessage }}</div>
		{{ else if .BlastReport }}
			<pre>{{ .BlastReport }}</pre>
		{{ else }}
			<p>Your BLAST search is still running. This page refreshes every {{ .RefreshIntervalSeconds }} seconds.</p>
		{{ end }}
	</body>
	</html>`

	blastPageTemplate = newPage("blast_page", mainTmpl, nil)
}

func RenderBLASTPage(w io.Writer, data BlastPageData) error {
	logger.Info("Rendering blast page", zap.String("job_id", data.JobID), zap.String("status", data.Status))
	return blastPageTemplate.Execute(w, data)
}
