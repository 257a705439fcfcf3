package model

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/protlit/pkg/mcsa"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/uniprot"
	"github.com/yumyai/protlit/pkg/unpaywall"
)

// densePDB has one alanine on chain A whose CA sits inside a cluster of
// 35 waters, and a lone glycine on chain B.
func densePDB() string {
	var sb strings.Builder
	line := func(serial int, record, name, res string, chain byte, seq int, x, y, z float64) {
		fmt.Fprintf(&sb, "%-6s%5d %-4s %3s %c%4d    %8.3f%8.3f%8.3f  1.00 20.00          %2s\n",
			record, serial, name, res, chain, seq, x, y, z, name[:1])
	}
	line(1, "ATOM", "N", "ALA", 'A', 1, -1.2, 0, 0)
	line(2, "ATOM", "CA", "ALA", 'A', 1, 0, 0, 0)
	line(3, "ATOM", "C", "ALA", 'A', 1, 1.2, 0, 0)
	for i := 0; i < 35; i++ {
		line(4+i, "HETATM", "O", "HOH", 'A', 100+i, float64(i%5)*0.5, float64(i/5)*0.5, 1.0)
	}
	line(40, "ATOM", "CA", "GLY", 'B', 7, 50, 50, 50)
	sb.WriteString("END\n")
	return sb.String()
}

type fakeEntries struct {
	pdb       string
	searchHit string
	searched  string
	entryErr  error
}

func (f *fakeEntries) Entry(ctx context.Context, id string) (*rcsb.Entry, error) {
	if f.entryErr != nil {
		return nil, f.entryErr
	}
	e := &rcsb.Entry{ID: id}
	e.Struct.Title = "LYSOZYME"
	e.PrimaryCitation = &rcsb.Citation{DOI: "10.1000/lyz", Title: "Lysozyme", Authors: []string{"Blake, C.C."}}
	e.Info.PolymerMonomerCountMaximum = 129
	return e, nil
}

func (f *fakeEntries) DownloadStructure(ctx context.Context, id string) ([]byte, error) {
	return []byte(f.pdb), nil
}

func (f *fakeEntries) SearchSequence(ctx context.Context, seq string) (string, error) {
	f.searched = seq
	if f.searchHit == "" {
		return "", rcsb.ErrNoMatch
	}
	return f.searchHit, nil
}

type fakeMappings []string

func (f fakeMappings) UniProtAccessions(ctx context.Context, id string) []string { return f }

type fakeAnnotations struct{ entry uniprot.Entry }

func (f fakeAnnotations) Entry(ctx context.Context, acc string) uniprot.Entry { return f.entry }

type fakeSites []mcsa.ActiveSite

func (f fakeSites) ActiveSites(ctx context.Context, id string) []mcsa.ActiveSite { return f }

type fakeLocator struct{ rec *unpaywall.Record }

func (f fakeLocator) Lookup(ctx context.Context, doi string) (*unpaywall.Record, error) {
	return f.rec, nil
}

type fakeReader struct {
	text string
	err  error
}

func (f fakeReader) FetchText(ctx context.Context, url string, maxChars int) (string, error) {
	return f.text, f.err
}

type fakeLLM struct {
	replies []string
	prompts []string
}

func (f *fakeLLM) Chat(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", errors.New("no reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type memStore map[string][]byte

func (m memStore) Save(id string, data []byte) error {
	m[id] = data
	return nil
}

func intp(v int) *int { return &v }

func lysozymeEntry() uniprot.Entry {
	name := "Lysozyme C"
	return uniprot.Entry{
		Accession: "P00698",
		Features: []uniprot.Feature{
			{Type: "Domain", Location: uniprot.Location{Start: uniprot.Position{Value: intp(19)}, End: uniprot.Position{Value: intp(147)}}, Description: "C-type lysozyme"},
			{Type: "Disulfide bond", Location: uniprot.Location{Start: uniprot.Position{Value: intp(24)}, End: uniprot.Position{Value: intp(145)}}},
		},
		Comments: []uniprot.Comment{
			{CommentType: "FUNCTION", Texts: []uniprot.Value{{Value: "Lysozymes have primarily a bacteriolytic function."}}},
		},
		ProteinDescription: uniprot.ProteinDescription{RecommendedName: &uniprot.Name{FullName: uniprot.Value{Value: name}}},
	}
}

func fullAnalyzer(llm *fakeLLM) (*Analyzer, memStore) {
	store := memStore{}
	return &Analyzer{
		Entries:     &fakeEntries{pdb: densePDB(), searchHit: "1LYZ"},
		Mappings:    fakeMappings{"P00698"},
		Annotations: fakeAnnotations{entry: lysozymeEntry()},
		Sites:       fakeSites{{Description: "glycosidase"}},
		Papers:      fakeLocator{rec: &unpaywall.Record{BestOALocation: &unpaywall.Location{URLForPDF: "https://example.org/lyz.pdf"}}},
		PaperText:   fakeReader{text: "Lysozyme cleaves peptidoglycan."},
		LLM:         llm,
		Structures:  store,
	}, store
}

func TestAnalyzeFullPipeline(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"```json\n{\"Structure\": [\"alpha+beta fold\"], \"Function\": [\"hydrolase\"], \"Sequence\": []}\n```",
		"It hydrolyses bacterial cell walls.",
	}}
	a, store := fullAnalyzer(llm)

	report, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1lyz"})
	require.NoError(t, err)

	assert.Equal(t, "1LYZ", report.PDBID)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "LYSOZYME", report.Title)
	assert.Equal(t, []string{"A", "B"}, report.Chains)
	require.Len(t, report.Hotspots, 1)
	assert.Equal(t, "A1", report.Hotspots[0].Label())
	assert.Equal(t, "A1", report.HotspotLabels())
	assert.Len(t, report.ActiveSites, 1)
	assert.Equal(t, "P00698", report.UniProtID)
	require.NotNil(t, report.Protein)
	assert.Equal(t, "Lysozyme C", report.Protein.Name)
	assert.Equal(t, []string{"hydrolase"}, report.Summary.Function)
	require.NotNil(t, report.Paper)
	assert.Equal(t, "It hydrolyses bacterial cell walls.", report.Paper.Answer)
	assert.Len(t, report.FeatureFigure.Data, 2)
	assert.Contains(t, report.ViewerHTML, "pdb:1LYZ")
	assert.Contains(t, report.ViewerHTML, "chain: 'A', resi: 1")
	assert.Empty(t, report.Warnings)
	assert.Contains(t, store, "1LYZ")

	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "bacteriolytic")
	assert.Contains(t, llm.prompts[1], "Question: "+DefaultQuestion)
}

func TestAnalyzeMissingMapping(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{replies: []string{"answer"}})
	a.Mappings = fakeMappings(nil)

	report, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1LYZ"})
	require.NoError(t, err)
	assert.Equal(t, "", report.UniProtID)
	assert.Nil(t, report.Protein)
	assert.Empty(t, report.Features)
	assert.Empty(t, report.FeatureFigure.Data)
	assert.True(t, report.Summary.IsEmpty())
	assert.Contains(t, report.Warnings, "No UniProt mapping found for this entry.")
}

func TestAnalyzeSummaryNotJSON(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{replies: []string{"Here is a summary in prose.", "answer"}})

	report, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1LYZ"})
	require.NoError(t, err)
	assert.True(t, report.Summary.IsEmpty())
	assert.Contains(t, report.Warnings, "Annotation summary was not valid JSON.")
	require.NotNil(t, report.Paper)
	assert.Equal(t, "answer", report.Paper.Answer)
}

func TestAnalyzeSummaryEmptyObject(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{replies: []string{"{}", "answer"}})

	report, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1LYZ"})
	require.NoError(t, err)
	assert.True(t, report.Summary.IsEmpty())
	assert.Contains(t, report.Warnings, "Annotation summary was not valid JSON.")
}

func TestAnalyzeNoOpenAccess(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{replies: []string{`{"Function": "x"}`}})
	a.Papers = fakeLocator{rec: nil}

	report, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1LYZ"})
	require.NoError(t, err)
	assert.Nil(t, report.Paper)
	assert.Contains(t, report.Warnings, "No open-access PDF found via Unpaywall.")
}

func TestAnalyzeWithoutLLM(t *testing.T) {
	a, _ := fullAnalyzer(nil)
	a.LLM = nil

	report, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1LYZ"})
	require.NoError(t, err)
	require.NotNil(t, report.Paper)
	assert.Equal(t, "", report.Paper.Answer)
	assert.Contains(t, report.Warnings, "LLM is not configured; annotation summary skipped.")
	assert.Contains(t, report.Warnings, "LLM is not configured; question not answered.")
}

func TestAnalyzeSequence(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{})
	entries := a.Entries.(*fakeEntries)

	report, err := a.Analyze(context.Background(), AnalyzeRequest{InputType: InputSequence, Sequence: ">q\nkvfgr\ncelaa"})
	require.NoError(t, err)
	assert.Equal(t, "KVFGRCELAA", entries.searched)
	assert.Equal(t, "1LYZ", report.PDBID)
	assert.True(t, report.MatchedFromSequence)

	entries.searchHit = ""
	_, err = a.Analyze(context.Background(), AnalyzeRequest{InputType: InputSequence, Sequence: "KVFGR"})
	assert.ErrorIs(t, err, ErrNoStructureMatch)
}

func TestAnalyzeInvalidInput(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{})

	_, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "../etc"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = a.Analyze(context.Background(), AnalyzeRequest{InputType: InputSequence, Sequence: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = a.Analyze(context.Background(), AnalyzeRequest{InputType: "uniprot", PDBID: "1LYZ"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeEntryFailureAborts(t *testing.T) {
	a, _ := fullAnalyzer(&fakeLLM{})
	a.Entries.(*fakeEntries).entryErr = errors.New("rcsb down")

	_, err := a.Analyze(context.Background(), AnalyzeRequest{PDBID: "1LYZ"})
	assert.Error(t, err)
}
