package render

import (
	"html/template"
	"io"
)

var indexPageTemplate *template.Template

type IndexPageData struct {
	DefaultQuestion string
	ErrorMessage    string
	LLMEnabled      bool
}

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		{{template "head"}}
		<title>Protein Literature Assistant</title>
	</head>
	<body>
		{{template "header"}}
		{{ if .ErrorMessage }}<div class="error">{{ .ErrorMessage }}</div>{{ end }}
		<form id="analyzeForm" action="/analyze" method="POST">
			<div class="form-row">
				<label><input type="radio" name="input_type" value="pdb" checked> PDB ID</label>
				<label><input type="radio" name="input_type" value="sequence"> Protein Sequence</label>
			</div>
			<div class="form-row">
				<label>PDB ID (e.g., 1LYZ): <input type="text" name="pdb_id" maxlength="12"></label>
			</div>
			<div class="form-row">
				<label>Protein sequence (FASTA or plain amino acids):</label>
				<textarea name="sequence" rows="5"></textarea>
			</div>
			<div class="form-row">
				<label>Your question:</label>
				<textarea name="question" rows="2">{{ .DefaultQuestion }}</textarea>
				{{ if not .LLMEnabled }}<p class="muted">No language model is configured; summaries and answers will be skipped.</p>{{ end }}
			</div>
			<div class="form-row">
				<input type="submit" value="Analyze">
			</div>
		</form>
	</body>
	</html>`

	indexPageTemplate = newPage("index_page", mainTmpl, nil)
}

func RenderIndexPage(w io.Writer, data IndexPageData) error {
	return indexPageTemplate.Execute(w, data)
}
