package render

import (
	"html/template"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/features"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/rcsb"
)

var reportPageTemplate *template.Template

type ReportPageData struct {
	Report      *model.Report
	Categories  features.Categories
	FeatureJSON template.JS
	Viewer      template.HTML
	EntryURL    string
	FromHistory bool
}

// NewReportPageData prepares the figure JSON and trusted viewer markup.
func NewReportPageData(r *model.Report, fromHistory bool) (ReportPageData, error) {
	figJSON, err := r.FeatureFigure.JSON()
	if err != nil {
		return ReportPageData{}, err
	}
	return ReportPageData{
		Report:      r,
		Categories:  r.Categories(),
		FeatureJSON: template.JS(figJSON),
		Viewer:      template.HTML(r.ViewerHTML),
		EntryURL:    rcsb.ViewerURL(r.PDBID),
		FromHistory: fromHistory,
	}, nil
}

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		{{template "head"}}
		<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
		<title>Results for {{ .Report.PDBID }}</title>
	</head>
	<body>
		{{template "header"}}
		<h2>Results for <a href="{{ .EntryURL }}" target="_blank">{{ .Report.PDBID }}</a></h2>
		{{ with .Report }}
			{{ if .MatchedFromSequence }}<p>Found matching PDB ID {{ .PDBID }} for the submitted sequence.</p>{{ end }}
			<p class="muted">{{ .Title }}</p>
			{{template "warnings" .Warnings}}
		{{ end }}
		{{ if .FromHistory }}<p class="muted">Stored report from {{ .Report.CreatedAt.Format "2006-01-02 15:04" }}.</p>{{ end }}

		<div class="tabs">
			<button type="button" class="active" data-tab="literature">Literature &amp; Catalysis</button>
			<button type="button" data-tab="sequence">Sequence &amp; Domains</button>
			<button type="button" data-tab="mutations">Mutations &amp; Predictions</button>
		</div>
		<div class="tab-panel active" id="literature">{{template "literature" .Report}}</div>
		<div class="tab-panel" id="sequence">{{template "sequence" .}}</div>
		<div class="tab-panel" id="mutations">{{template "mutations" .Report}}</div>

		<h3>3D Structure Viewer</h3>
		{{ .Viewer }}

		<script>
			document.querySelectorAll('.tabs button').forEach(function (btn) {
				btn.addEventListener('click', function () {
					document.querySelectorAll('.tabs button, .tab-panel').forEach(function (el) { el.classList.remove('active'); });
					btn.classList.add('active');
					document.getElementById(btn.dataset.tab).classList.add('active');
					window.dispatchEvent(new Event('resize'));
				});
			});
			var fig = {{ .FeatureJSON }};
			if (fig.data.length > 0) {
				Plotly.newPlot('featureMap', fig.data, fig.layout, {responsive: true});
			}
			var mform = document.getElementById('mutationForm');
			mform.addEventListener('submit', function (ev) {
				ev.preventDefault();
				var out = document.getElementById('mutationResult');
				out.textContent = 'Predicting...';
				fetch('/mutation', { method: 'POST', body: new URLSearchParams(new FormData(mform)) })
					.then(function (resp) { return resp.text(); })
					.then(function (html) { out.innerHTML = html; })
					.catch(function (err) { out.textContent = 'Prediction failed: ' + err; });
			});
		</script>
	</body>
	</html>`

	literatureTmpl := `
	{{define "literature"}}
		<h3>Paper Metadata</h3>
		{{ with .Citation }}
		<ul>
			<li><strong>DOI:</strong> {{ if .DOI }}<a href="https://doi.org/{{ .DOI }}" target="_blank">{{ .DOI }}</a>{{ else }}N/A{{ end }}</li>
			<li><strong>Title:</strong> {{ or .Title "N/A" }}</li>
			<li><strong>Authors:</strong> {{ join .Authors ", " }}</li>
			<li><strong>Journal:</strong> {{ or .Journal "N/A" }}{{ with .Year }} ({{ . }}){{ end }}</li>
		</ul>
		{{ else }}
		<p class="muted">No primary citation.</p>
		{{ end }}

		{{ with .Protein }}
		<h3>UniProt Functional Annotations</h3>
		<ul>
			<li><strong>Protein Name:</strong> {{ .Name }}</li>
			<li><strong>EC Number:</strong> {{ .ECNumber }}</li>
			<li><strong>Gene:</strong> {{ .Gene }}</li>
		</ul>
		{{ end }}
		{{ if .Summary.Function }}
		<details>
			<summary>Functional Roles</summary>
			<ul>{{ range .Summary.Function }}<li>{{ . }}</li>{{ end }}</ul>
		</details>
		{{ end }}

		<h3>Catalytic Sites (M-CSA)</h3>
		{{ if .ActiveSites }}
		<ul>
			{{ range .ActiveSites }}
			<li>{{ or .Description "Active site" }}: {{ range $i, $r := .Residues }}{{ if $i }}, {{ end }}{{ $r.Label }}{{ end }}</li>
			{{ end }}
		</ul>
		{{ else }}
		<p class="muted">No catalytic site annotation.</p>
		{{ end }}

		<h3>LLM Answer to Your Question</h3>
		<p><em>{{ .Question }}</em></p>
		{{ with .Paper }}
			{{ if .Answer }}<div>{{ .Answer }}</div>{{ else }}<p class="muted">No answer was generated.</p>{{ end }}
			<details>
				<summary>Show paper excerpt</summary>
				<p><a href="{{ .PDFURL }}" target="_blank">{{ .PDFURL }}</a></p>
				<pre>{{ .Excerpt }}</pre>
			</details>
		{{ else }}
			<p class="muted">No open-access paper text was available.</p>
		{{ end }}
	{{end}}
	`

	sequenceTmpl := `
	{{define "sequence"}}
		<h3>Sequence Features &amp; Domains</h3>
		{{ with .Report.Protein }}
		<p><strong>UniProt Accession:</strong> <a href="{{ .URL }}" target="_blank">{{ $.Report.UniProtID }}</a></p>
		{{ end }}
		{{ if .Report.Features }}
			<div id="featureMap"></div>
			<table>
				<tr><th>Category</th><th>Label</th><th>Start</th><th>End</th></tr>
				{{ range .Categories.Domain }}<tr><td>Domain</td><td>{{ .Label }}</td><td>{{ .Start }}</td><td>{{ .End }}</td></tr>{{ end }}
				{{ range .Categories.Site }}<tr><td>Site</td><td>{{ .Label }}</td><td>{{ .Start }}</td><td>{{ .End }}</td></tr>{{ end }}
				{{ range .Categories.Bond }}<tr><td>Bond</td><td>{{ .Label }}</td><td>{{ .Start }}</td><td>{{ .End }}</td></tr>{{ end }}
				{{ range .Categories.Other }}<tr><td>Other</td><td>{{ .Label }}</td><td>{{ .Start }}</td><td>{{ .End }}</td></tr>{{ end }}
			</table>
		{{ else }}
			<div id="featureMap"></div>
			<p class="muted">No UniProt domain annotations found.</p>
		{{ end }}
		{{ with .Report.Summary }}
			{{ if .Structure }}
			<details>
				<summary>Structural Insights</summary>
				<ul>{{ range .Structure }}<li>{{ . }}</li>{{ end }}</ul>
			</details>
			{{ end }}
			{{ if .Sequence }}
			<details>
				<summary>Sequence Information</summary>
				<ul>{{ range .Sequence }}<li>{{ . }}</li>{{ end }}</ul>
			</details>
			{{ end }}
		{{ end }}

		<h3>Chains</h3>
		<p><a href="/sequence/{{ .Report.PDBID }}" target="_blank">FASTA</a> of all chains (ATOM records)</p>
		<table>
			<tr><th>Chain</th><th>BLAST</th></tr>
			{{ range .Report.Chains }}
			<tr>
				<td>{{ . }}</td>
				<td>
					<form action="/blast" method="POST" style="display:inline">
						<input type="hidden" name="pdb_id" value="{{ $.Report.PDBID }}">
						<input type="hidden" name="chain" value="{{ . }}">
						<input type="submit" value="Run BLAST">
					</form>
					<a href="/redirect/blastp?pdb_id={{ $.Report.PDBID }}&chain={{ . }}" target="_blank">Open at NCBI</a>
				</td>
			</tr>
			{{ end }}
		</table>
	{{end}}
	`

	mutationsTmpl := `
	{{define "mutations"}}
		<h3>Structural Hotspots</h3>
		{{ if .Hotspots }}
			<p>{{ .HotspotLabels }}</p>
			<table>
				<tr><th>Residue</th><th>Name</th><th>Atoms within cutoff</th></tr>
				{{ range .Hotspots }}<tr><td>{{ .Label }}</td><td>{{ .ResidueName }}</td><td>{{ .Contacts }}</td></tr>{{ end }}
			</table>
		{{ else }}
			<p>No hotspots detected.</p>
		{{ end }}
		<hr>
		<h3>Mutation &Delta;&Delta;G Predictions</h3>
		<form id="mutationForm">
			<input type="hidden" name="pdb_id" value="{{ .PDBID }}">
			<div class="form-row"><label>Residue (e.g., A123): <input type="text" name="site" required></label></div>
			<div class="form-row"><label>Mutation (e.g., A123C): <input type="text" name="mutation" required></label></div>
			<div class="form-row">
				<label>Service:
					<select name="service">
						<option value="dynamut">DynaMut (stability)</option>
						<option value="mcsm_ppi">mCSM-PPI (binding)</option>
					</select>
				</label>
			</div>
			<input type="submit" value="Predict">
		</form>
		<div id="mutationResult"></div>
	{{end}}
	`

	reportPageTemplate = newPage("report_page", mainTmpl, template.FuncMap{
		"join": strings.Join,
	})
	template.Must(reportPageTemplate.Parse(literatureTmpl))
	template.Must(reportPageTemplate.Parse(sequenceTmpl))
	template.Must(reportPageTemplate.Parse(mutationsTmpl))
}

func RenderReportPage(w io.Writer, data ReportPageData) error {
	logger.Info("Rendering report page", zap.String("pdb_id", data.Report.PDBID), zap.String("report_id", data.Report.ID))
	return reportPageTemplate.Execute(w, data)
}
