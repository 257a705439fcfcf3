package render

import (
	"html/template"
	"io"

	"github.com/yumyai/protlit/pkg/features"
)

var conservationPageTemplate *template.Template

type ConservationPageData struct {
	Alignment    string
	Sequences    int
	Scores       []float64
	FigureJSON   template.JS
	ErrorMessage string
}

// NewConservationPageData attaches the plot for scores, if any.
func NewConservationPageData(alignment string, sequences int, scores []float64) (ConservationPageData, error) {
	data := ConservationPageData{Alignment: alignment, Sequences: sequences, Scores: scores}
	if len(scores) == 0 {
		return data, nil
	}
	figJSON, err := features.PlotConservation(scores).JSON()
	if err != nil {
		return data, err
	}
	data.FigureJSON = template.JS(figJSON)
	return data, nil
}

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		{{template "head"}}
		<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
		<title>Sequence conservation</title>
	</head>
	<body>
		{{template "header"}}
		<h2>Sequence Conservation</h2>
		{{ if .ErrorMessage }}<div class="error">{{ .ErrorMessage }}</div>{{ end }}
		<form action="/conservation" method="POST">
			<div class="form-row">
				<label>Aligned sequences (FASTA, equal length, gaps as "-"):</label>
				<textarea name="alignment" rows="10">{{ .Alignment }}</textarea>
			</div>
			<input type="submit" value="Score">
		</form>
		{{ if .Scores }}
			<p>{{ .Sequences }} sequences, {{ len .Scores }} columns.</p>
			<div id="conservationPlot"></div>
			<details>
				<summary>Scores</summary>
				<table>
					<tr><th>Position</th><th>Score</th></tr>
					{{ range $i, $s := .Scores }}<tr><td>{{ add $i 1 }}</td><td>{{ printf "%.3f" $s }}</td></tr>{{ end }}
				</table>
			</details>
			<script>
				var fig = {{ .FigureJSON }};
				Plotly.newPlot('conservationPlot', fig.data, fig.layout, {responsive: true});
			</script>
		{{ end }}
	</body>
	</html>`

	conservationPageTemplate = newPage("conservation_page", mainTmpl, nil)
}

func RenderConservationPage(w io.Writer, data ConservationPageData) error {
	return conservationPageTemplate.Execute(w, data)
}
