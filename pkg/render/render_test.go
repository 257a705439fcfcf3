package render

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/protlit/pkg/db"
	"github.com/yumyai/protlit/pkg/features"
	"github.com/yumyai/protlit/pkg/mcsa"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/predict"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/structure"
)

func sampleReport() *model.Report {
	year := 1965
	feats := []features.Feature{
		{Type: "Domain", Start: 19, End: 147, Description: "C-type lysozyme"},
		{Type: "Disulfide bond", Start: 24, End: 145},
	}
	return &model.Report{
		ID:       "r1",
		PDBID:    "1LYZ",
		Question: "What does it cut?",
		Title:    "LYSOZYME",
		Citation: &rcsb.Citation{DOI: "10.1038/206757a0", Title: "Structure of hen egg-white lysozyme", Authors: []string{"Blake, C.C.", "Koenig, D.F."}, Year: &year},
		Chains:   []string{"A"},
		Hotspots: []structure.Hotspot{{Chain: "A", ResidueName: "GLU", SequenceNum: 35, Contacts: 41}},
		ActiveSites: []mcsa.ActiveSite{{
			Description: "glycosidase",
			Residues:    []mcsa.SiteResidue{{Chain: "A", Number: 35, Code: "Glu"}, {Chain: "A", Number: 52, Code: "Asp"}},
		}},
		UniProtID:     "P00698",
		Protein:       &model.ProteinInfo{Name: "Lysozyme C", ECNumber: "3.2.1.17", Gene: "LYZ", URL: "https://www.uniprot.org/uniprotkb/P00698"},
		Features:      feats,
		FeatureFigure: features.PlotDomains(feats, 129),
		Summary:       model.Summary{Function: []string{"<b>hydrolase</b>"}},
		Paper:         &model.PaperAnswer{DOI: "10.1038/206757a0", PDFURL: "https://example.org/p.pdf", Excerpt: "text", Answer: "Peptidoglycan."},
		ViewerHTML:    model.ViewerHTML("1LYZ", nil),
		Warnings:      []string{"Structure file could not be cached locally."},
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
	}
}

func TestRenderReportPage(t *testing.T) {
	data, err := NewReportPageData(sampleReport(), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderReportPage(&buf, data))
	out := buf.String()

	assert.Contains(t, out, "Results for")
	assert.Contains(t, out, "https://www.rcsb.org/structure/1LYZ")
	assert.Contains(t, out, "Blake, C.C., Koenig, D.F.")
	assert.Contains(t, out, "(1965)")
	assert.Contains(t, out, "Glu35 (A), Asp52 (A)")
	assert.Contains(t, out, "Lysozyme C")
	assert.Contains(t, out, "&lt;b&gt;hydrolase&lt;/b&gt;", "LLM output must be escaped")
	assert.Contains(t, out, "Peptidoglycan.")
	assert.Contains(t, out, "C-type lysozyme")
	assert.Contains(t, out, "A35")
	assert.Contains(t, out, "Structure file could not be cached locally.")
	assert.Contains(t, out, "$3Dmol.download('pdb:1LYZ'")
	assert.Contains(t, out, `"type":"bar"`)
	assert.Contains(t, out, "/redirect/blastp?pdb_id=1LYZ&chain=A")
}

func TestRenderReportPageEmptyStates(t *testing.T) {
	r := &model.Report{
		ID:            "r2",
		PDBID:         "9XYZ",
		FeatureFigure: features.PlotDomains(nil, 0),
		Hotspots:      []structure.Hotspot{},
	}
	data, err := NewReportPageData(r, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderReportPage(&buf, data))
	out := buf.String()

	assert.Contains(t, out, "No hotspots detected.")
	assert.Contains(t, out, "No UniProt domain annotations found.")
	assert.Contains(t, out, "No open-access paper text was available.")
	assert.Contains(t, out, "No primary citation.")
	assert.Contains(t, out, "Stored report from")
}

func TestRenderBLASTPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBLASTPage(&buf, BlastPageData{
		JobID: "job1", Status: "running", ShouldRefresh: true, RefreshIntervalSeconds: 5,
	}))
	assert.Contains(t, buf.String(), "window.location.reload")
	assert.Contains(t, buf.String(), "5000")

	buf.Reset()
	require.NoError(t, RenderBLASTPage(&buf, BlastPageData{JobID: "job1", Status: "completed", BlastReport: "> pdb|1LYZ|A"}))
	assert.NotContains(t, buf.String(), "window.location.reload")
	assert.Contains(t, buf.String(), "&gt; pdb|1LYZ|A")
}

func TestRenderHistoryPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistoryPage(&buf, []db.HistoryEntry{{ID: "r1", PDBID: "1LYZ", Title: "LYSOZYME", HotspotCount: 3}}))
	assert.Contains(t, buf.String(), `href="/history/r1"`)

	buf.Reset()
	require.NoError(t, RenderHistoryPage(&buf, nil))
	assert.Contains(t, buf.String(), "Nothing analyzed yet.")
}

func TestRenderConservationPage(t *testing.T) {
	data, err := NewConservationPageData(">a\nAC\n>b\nAG", 2, []float64{1, 0.5})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderConservationPage(&buf, data))
	out := buf.String()
	assert.Contains(t, out, "2 sequences, 2 columns.")
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "Conservation Score")
}

func TestRenderPrediction(t *testing.T) {
	ddg := -1.5
	var buf bytes.Buffer
	require.NoError(t, RenderPrediction(&buf, PredictionData{
		PDBID: "1LYZ", Site: "A35", Mutation: "E35Q",
		Prediction: &predict.Prediction{Service: predict.DynaMut, DDG: &ddg},
	}))
	assert.Contains(t, buf.String(), "-1.50 kcal/mol (destabilising)")

	buf.Reset()
	require.NoError(t, RenderPrediction(&buf, PredictionData{Prediction: &predict.Prediction{Service: predict.MCSMPPI}}))
	assert.Contains(t, buf.String(), "returned no")
}

func TestRenderIndexAndError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderIndexPage(&buf, IndexPageData{DefaultQuestion: model.DefaultQuestion}))
	assert.Contains(t, buf.String(), model.DefaultQuestion)
	assert.Contains(t, buf.String(), "No language model is configured")

	buf.Reset()
	require.NoError(t, RenderErrorPage(&buf, "Something went wrong"))
	assert.Contains(t, buf.String(), "Something went wrong")
}

func TestStatic(t *testing.T) {
	data, err := fs.ReadFile(Static(), "style.css")
	require.NoError(t, err)
	assert.Contains(t, string(data), ".tab-panel")
}
