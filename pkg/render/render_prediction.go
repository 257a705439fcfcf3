package render

import (
	"html/template"
	"io"

	"github.com/yumyai/protlit/pkg/predict"
)

var predictionTemplate *template.Template

type PredictionData struct {
	PDBID      string
	Site       string
	Mutation   string
	Prediction *predict.Prediction
}

func (d PredictionData) HasDDG() bool {
	return d.Prediction != nil && d.Prediction.DDG != nil
}

func (d PredictionData) DDG() float64 {
	if !d.HasDDG() {
		return 0
	}
	return *d.Prediction.DDG
}

// Effect reads the sign of ΔΔG; both services report negative values for
// the damaging direction.
func (d PredictionData) Effect() string {
	damaging := d.DDG() < 0
	if d.Prediction != nil && d.Prediction.Service == predict.MCSMPPI {
		if damaging {
			return "reduces binding affinity"
		}
		return "increases binding affinity"
	}
	if damaging {
		return "destabilising"
	}
	return "stabilising"
}

func init() {
	// fragment inserted into the report page
	fragment := `
	<div class="prediction">
		<p><strong>{{ .Prediction.Service }}</strong> prediction for {{ .Mutation }} at {{ .Site }} ({{ .PDBID }}):</p>
		{{ if .HasDDG }}
			<p>&Delta;&Delta;G = {{ printf "%.2f" .DDG }} kcal/mol ({{ .Effect }})</p>
		{{ else }}
			<p class="muted">The service returned no &Delta;&Delta;G value.</p>
		{{ end }}
	</div>`

	predictionTemplate = template.Must(template.New("prediction").Parse(fragment))
}

func RenderPrediction(w io.Writer, data PredictionData) error {
	return predictionTemplate.Execute(w, data)
}
