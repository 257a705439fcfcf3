package model

import (
	"bytes"
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/features"
	"github.com/yumyai/protlit/pkg/mcsa"
	"github.com/yumyai/protlit/pkg/paper"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/structure"
	"github.com/yumyai/protlit/pkg/uniprot"
	"github.com/yumyai/protlit/pkg/unpaywall"
)

// ErrNoStructureMatch is returned when a sequence search finds no entry.
var ErrNoStructureMatch = errors.New("could not find a matching PDB ID for the sequence")

type EntrySource interface {
	Entry(ctx context.Context, id string) (*rcsb.Entry, error)
	DownloadStructure(ctx context.Context, id string) ([]byte, error)
	SearchSequence(ctx context.Context, sequence string) (string, error)
}

type MappingSource interface {
	UniProtAccessions(ctx context.Context, pdbID string) []string
}

type AnnotationSource interface {
	Entry(ctx context.Context, accession string) uniprot.Entry
}

type SiteSource interface {
	ActiveSites(ctx context.Context, pdbID string) []mcsa.ActiveSite
}

type PaperLocator interface {
	Lookup(ctx context.Context, doi string) (*unpaywall.Record, error)
}

type PaperReader interface {
	FetchText(ctx context.Context, url string, maxChars int) (string, error)
}

type ChatModel interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

type StructureSaver interface {
	Save(id string, data []byte) error
}

// Analyzer runs the lookup pipeline. Entries is required; a nil optional
// source skips its step with a warning.
type Analyzer struct {
	Entries     EntrySource
	Mappings    MappingSource
	Annotations AnnotationSource
	Sites       SiteSource
	Papers      PaperLocator
	PaperText   PaperReader
	LLM         ChatModel
	Structures  StructureSaver

	Hotspots      structure.HotspotOptions
	PaperMaxChars int
}

// Analyze assembles a report for one identifier or sequence. Only a failed
// sequence search, entry lookup, structure download or parse is an error;
// every optional step degrades to a warning.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:          uuid.NewString(),
		Question:    req.Question,
		Hotspots:    []structure.Hotspot{},
		ActiveSites: []mcsa.ActiveSite{},
		Features:    []features.Feature{},
		Warnings:    []string{},
		CreatedAt:   time.Now().UTC(),
	}

	pdbID := req.PDBID
	if req.InputType == InputSequence {
		pdbID, err = a.Entries.SearchSequence(ctx, req.Sequence)
		if errors.Is(err, rcsb.ErrNoMatch) {
			return nil, ErrNoStructureMatch
		}
		if err != nil {
			return nil, errors.Wrap(err, "sequence search")
		}
		report.MatchedFromSequence = true
		logger.Info("sequence matched entry", zap.String("pdb_id", pdbID))
	}
	report.PDBID = pdbID

	entry, err := a.Entries.Entry(ctx, pdbID)
	if err != nil {
		return nil, err
	}
	report.Title = entry.Struct.Title
	report.Citation = entry.PrimaryCitation
	report.EntryInfo = entry.Info

	if err := a.analyzeStructure(ctx, report); err != nil {
		return nil, err
	}

	if a.Sites != nil {
		report.ActiveSites = a.Sites.ActiveSites(ctx, pdbID)
	}

	texts := a.annotate(ctx, report)
	a.summarize(ctx, report, texts)
	a.answerFromPaper(ctx, report)

	length := report.EntryInfo.PolymerMonomerCountMaximum
	if length <= 0 {
		length = maxFeatureEnd(report.Features)
	}
	report.FeatureFigure = features.PlotDomains(report.Features, length)
	report.ViewerHTML = ViewerHTML(pdbID, report.Hotspots)

	logger.Info("analysis complete",
		zap.String("report_id", report.ID),
		zap.String("pdb_id", pdbID),
		zap.Int("hotspots", len(report.Hotspots)),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func (a *Analyzer) analyzeStructure(ctx context.Context, report *Report) error {
	data, err := a.Entries.DownloadStructure(ctx, report.PDBID)
	if err != nil {
		return err
	}

	if a.Structures != nil {
		if err := a.Structures.Save(report.PDBID, data); err != nil {
			logger.Warn("could not store structure", zap.String("pdb_id", report.PDBID), zap.Error(err))
			report.warn("Structure file could not be cached locally.")
		}
	}

	s, err := structure.ParsePDB(bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "parse structure %s", report.PDBID)
	}
	for _, c := range s.Chains {
		report.Chains = append(report.Chains, c.Ident)
	}
	report.Hotspots = structure.FindHotspots(s, a.Hotspots)
	if len(report.Hotspots) == 0 {
		report.Hotspots = []structure.Hotspot{}
	}
	return nil
}

// annotate resolves the UniProt accession and returns the flattened comment
// texts for summarising.
func (a *Analyzer) annotate(ctx context.Context, report *Report) []string {
	if a.Mappings == nil || a.Annotations == nil {
		report.warn("UniProt annotation is not configured.")
		return nil
	}

	accessions := a.Mappings.UniProtAccessions(ctx, report.PDBID)
	if len(accessions) == 0 {
		report.warn("No UniProt mapping found for this entry.")
		return nil
	}
	report.UniProtID = accessions[0]

	entry := a.Annotations.Entry(ctx, report.UniProtID)
	if entry.IsEmpty() {
		report.warn("UniProt entry " + report.UniProtID + " could not be retrieved.")
		return nil
	}

	report.Protein = &ProteinInfo{
		Name:     entry.ProteinName(),
		ECNumber: entry.ECNumber(),
		Gene:     entry.GeneName(),
		URL:      uniprot.EntryURL(report.UniProtID),
	}
	report.Features = entry.PositionedFeatures()
	texts := entry.AnnotationTexts()
	report.AnnotationCount = len(texts)
	return texts
}

func (a *Analyzer) summarize(ctx context.Context, report *Report, texts []string) {
	if len(texts) == 0 {
		return
	}
	if a.LLM == nil {
		report.warn("LLM is not configured; annotation summary skipped.")
		return
	}

	reply, err := a.LLM.Chat(ctx, AnnotationPrompt(texts))
	if err != nil {
		logger.Warn("annotation summary failed", zap.String("pdb_id", report.PDBID), zap.Error(err))
		report.warn("Annotation summary failed.")
		return
	}
	summary, err := ParseSummary(reply)
	if err != nil {
		logger.Warn("annotation summary unparseable", zap.String("pdb_id", report.PDBID), zap.Error(err))
		report.warn("Annotation summary was not valid JSON.")
		return
	}
	report.Summary = summary
}

func (a *Analyzer) answerFromPaper(ctx context.Context, report *Report) {
	doi := ""
	if report.Citation != nil {
		doi = report.Citation.DOI
	}
	if doi == "" {
		report.warn("DOI not found; skipping literature answer.")
		return
	}
	if a.Papers == nil || a.PaperText == nil {
		report.warn("Open-access lookup is not configured.")
		return
	}

	rec, err := a.Papers.Lookup(ctx, doi)
	if err != nil {
		logger.Warn("unpaywall lookup failed", zap.String("doi", doi), zap.Error(err))
	}
	pdfURL := rec.PDFURL()
	if pdfURL == "" {
		report.warn("No open-access PDF found via Unpaywall.")
		return
	}

	maxChars := a.PaperMaxChars
	if maxChars <= 0 {
		maxChars = paper.DefaultMaxChars
	}
	text, err := a.PaperText.FetchText(ctx, pdfURL, maxChars)
	if err != nil {
		logger.Warn("paper download failed", zap.String("url", pdfURL), zap.Error(err))
		report.warn("Paper fetched but appears empty or unreadable.")
		return
	}

	report.Paper = &PaperAnswer{DOI: doi, PDFURL: pdfURL, Excerpt: text}
	if a.LLM == nil {
		report.warn("LLM is not configured; question not answered.")
		return
	}
	answer, err := a.LLM.Chat(ctx, PaperPrompt(doi, report.Question, text))
	if err != nil {
		logger.Warn("paper answer failed", zap.String("doi", doi), zap.Error(err))
		report.warn("LLM failed to answer the question.")
		return
	}
	report.Paper.Answer = answer
}

func maxFeatureEnd(feats []features.Feature) int {
	m := 0
	for _, f := range feats {
		if f.End > m {
			m = f.End
		}
	}
	return m
}
