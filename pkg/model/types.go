package model

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/features"
	"github.com/yumyai/protlit/pkg/mcsa"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/structure"
)

type InputType string

const (
	InputPDB      InputType = "pdb"
	InputSequence InputType = "sequence"
)

// ErrInvalidInput marks requests that fail validation before any lookup.
var ErrInvalidInput = errors.New("invalid input")

type AnalyzeRequest struct {
	InputType InputType `json:"input_type"`
	PDBID     string    `json:"pdb_id"`
	Sequence  string    `json:"sequence"`
	Question  string    `json:"question"`
}

// Normalize validates the request and canonicalises the identifier or
// sequence. The input type is inferred when left empty.
func (r AnalyzeRequest) Normalize() (AnalyzeRequest, error) {
	if r.InputType == "" {
		if strings.TrimSpace(r.Sequence) != "" && strings.TrimSpace(r.PDBID) == "" {
			r.InputType = InputSequence
		} else {
			r.InputType = InputPDB
		}
	}
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		r.Question = DefaultQuestion
	}

	switch r.InputType {
	case InputPDB:
		id, err := rcsb.NormalizeID(r.PDBID)
		if err != nil {
			return r, errors.Mark(err, ErrInvalidInput)
		}
		r.PDBID = id
		r.Sequence = ""
	case InputSequence:
		seq, err := CleanSequence(r.Sequence)
		if err != nil {
			return r, errors.Mark(err, ErrInvalidInput)
		}
		r.Sequence = seq
		r.PDBID = ""
	default:
		return r, errors.Mark(errors.Newf("unknown input type %q", r.InputType), ErrInvalidInput)
	}
	return r, nil
}

type ProteinInfo struct {
	Name     string `json:"name"`
	ECNumber string `json:"ec_number"`
	Gene     string `json:"gene"`
	URL      string `json:"url"`
}

// PaperAnswer is present once an open-access excerpt was read.
type PaperAnswer struct {
	DOI     string `json:"doi"`
	PDFURL  string `json:"pdf_url"`
	Excerpt string `json:"excerpt"`
	Answer  string `json:"answer,omitempty"`
}

// Report is everything assembled for one structure.
type Report struct {
	ID                  string              `json:"id"`
	PDBID               string              `json:"pdb_id"`
	MatchedFromSequence bool                `json:"matched_from_sequence"`
	Question            string              `json:"question"`
	Title               string              `json:"title"`
	Citation            *rcsb.Citation      `json:"citation,omitempty"`
	EntryInfo           rcsb.EntryInfo      `json:"entry_info"`
	Chains              []string            `json:"chains"`
	Hotspots            []structure.Hotspot `json:"hotspots"`
	ActiveSites         []mcsa.ActiveSite   `json:"active_sites"`
	UniProtID           string              `json:"uniprot_id,omitempty"`
	Protein             *ProteinInfo        `json:"protein,omitempty"`
	Features            []features.Feature  `json:"features"`
	FeatureFigure       features.Figure     `json:"feature_figure"`
	AnnotationCount     int                 `json:"annotation_count"`
	Summary             Summary             `json:"summary"`
	Paper               *PaperAnswer        `json:"paper,omitempty"`
	ViewerHTML          string              `json:"viewer_html"`
	Warnings            []string            `json:"warnings"`
	CreatedAt           time.Time           `json:"created_at"`
}

func (r *Report) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HotspotLabels is the comma separated hotspot list, e.g. "A12, A40".
func (r *Report) HotspotLabels() string {
	return structure.JoinLabels(r.Hotspots)
}

// Categories groups the report's features for display.
func (r *Report) Categories() features.Categories {
	return features.Categorize(r.Features)
}
