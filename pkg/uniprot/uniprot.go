// Package uniprot fetches annotations from the UniProtKB REST API and maps
// them into explicit types.
package uniprot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/features"
	"github.com/yumyai/protlit/pkg/httpx"
)

type Value struct {
	Value string `json:"value"`
}

type Position struct {
	Value    *int   `json:"value"`
	Modifier string `json:"modifier"`
}

type Location struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Feature struct {
	Type        string   `json:"type"`
	Location    Location `json:"location"`
	Description string   `json:"description"`
}

type Reaction struct {
	Name     string `json:"name"`
	ECNumber string `json:"ecNumber"`
}

type SubcellularLocation struct {
	Location Value `json:"location"`
}

type Interactant struct {
	GeneName string `json:"geneName"`
}

type Interaction struct {
	InteractantOne      Interactant `json:"interactantOne"`
	InteractantTwo      Interactant `json:"interactantTwo"`
	NumberOfExperiments int         `json:"numberOfExperiments"`
}

type Comment struct {
	CommentType          string                `json:"commentType"`
	Texts                []Value               `json:"texts"`
	Reaction             *Reaction             `json:"reaction"`
	SubcellularLocations []SubcellularLocation `json:"subcellularLocations"`
	Interactions         []Interaction         `json:"interactions"`
}

type Name struct {
	FullName  Value   `json:"fullName"`
	ECNumbers []Value `json:"ecNumbers"`
}

type ProteinDescription struct {
	RecommendedName *Name `json:"recommendedName"`
}

type Gene struct {
	GeneName *Value `json:"geneName"`
}

// Entry is the annotation subset of a UniProtKB record.
type Entry struct {
	Accession          string             `json:"primaryAccession"`
	Features           []Feature          `json:"features"`
	Comments           []Comment          `json:"comments"`
	ProteinDescription ProteinDescription `json:"proteinDescription"`
	Genes              []Gene             `json:"genes"`
}

type Client struct {
	baseURL string
	http    *httpx.Client
}

func NewClient(baseURL string, hc *httpx.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Entry fetches an accession. Failures are logged and produce an empty entry
// so the page can still show the structure-side results.
func (c *Client) Entry(ctx context.Context, accession string) Entry {
	var e Entry
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(strings.TrimSpace(accession)))
	if err := c.http.GetJSON(ctx, u, &e); err != nil {
		logger.Warn("UniProt lookup failed", zap.String("accession", accession), zap.Error(err))
		return Entry{}
	}
	return e
}

// ProteinName is the recommended full name or "N/A".
func (e Entry) ProteinName() string {
	if n := e.ProteinDescription.RecommendedName; n != nil && n.FullName.Value != "" {
		return n.FullName.Value
	}
	return "N/A"
}

// ECNumber is the first EC number of the recommended name or "N/A".
func (e Entry) ECNumber() string {
	if n := e.ProteinDescription.RecommendedName; n != nil && len(n.ECNumbers) > 0 && n.ECNumbers[0].Value != "" {
		return n.ECNumbers[0].Value
	}
	return "N/A"
}

// GeneName is the first gene's name or "N/A".
func (e Entry) GeneName() string {
	if len(e.Genes) > 0 && e.Genes[0].GeneName != nil && e.Genes[0].GeneName.Value != "" {
		return e.Genes[0].GeneName.Value
	}
	return "N/A"
}

// IsEmpty reports whether the entry carries no annotations at all.
func (e Entry) IsEmpty() bool {
	return len(e.Features) == 0 && len(e.Comments) == 0 &&
		e.ProteinDescription.RecommendedName == nil && len(e.Genes) == 0
}

// PositionedFeatures converts features with known start and end into the
// categorizer's input type. Features with an unknown bound are dropped.
func (e Entry) PositionedFeatures() []features.Feature {
	out := make([]features.Feature, 0, len(e.Features))
	for _, f := range e.Features {
		if f.Location.Start.Value == nil || f.Location.End.Value == nil {
			continue
		}
		out = append(out, features.Feature{
			Type:        f.Type,
			Start:       *f.Location.Start.Value,
			End:         *f.Location.End.Value,
			Description: f.Description,
		})
	}
	return out
}

// AnnotationTexts flattens the comments into one line per fact for the
// summarisation prompt.
func (e Entry) AnnotationTexts() []string {
	var texts []string
	for _, c := range e.Comments {
		switch {
		case len(c.Texts) > 0:
			for _, t := range c.Texts {
				texts = append(texts, t.Value)
			}
		case c.CommentType == "CATALYTIC ACTIVITY":
			if c.Reaction != nil && c.Reaction.Name != "" {
				texts = append(texts, fmt.Sprintf("Catalytic Activity: %s (EC %s)", c.Reaction.Name, c.Reaction.ECNumber))
			}
		case c.CommentType == "SUBCELLULAR LOCATION":
			for _, loc := range c.SubcellularLocations {
				if loc.Location.Value != "" {
					texts = append(texts, "Subcellular Location: "+loc.Location.Value)
				}
			}
		case c.CommentType == "INTERACTION":
			for _, in := range c.Interactions {
				texts = append(texts, fmt.Sprintf("Interaction: %s ↔ %s (%d experiments)",
					in.InteractantOne.GeneName, in.InteractantTwo.GeneName, in.NumberOfExperiments))
			}
		}
	}
	return texts
}

// EntryURL links to the accession on uniprot.org.
func EntryURL(accession string) string {
	return "https://www.uniprot.org/uniprotkb/" + url.PathEscape(accession)
}
