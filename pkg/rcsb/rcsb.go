// Package rcsb talks to the RCSB PDB data, file and search services.
package rcsb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/httpx"
)

// ErrNoMatch is returned when a sequence search finds no structure.
var ErrNoMatch = errors.New("no matching PDB entry")

// ErrInvalidID is returned for identifiers that are not PDB codes.
var ErrInvalidID = errors.New("invalid PDB identifier")

var idPattern = regexp.MustCompile(`(?i)^(?:[0-9][A-Z0-9]{3}|PDB_[0-9]{5}[A-Z0-9]{3})$`)

// NormalizeID trims and upper-cases a PDB identifier and checks its shape.
func NormalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if !idPattern.MatchString(id) {
		return "", errors.Wrapf(ErrInvalidID, "%q", raw)
	}
	return strings.ToUpper(id), nil
}

// Config points the client at the three services.
type Config struct {
	DataURL   string
	FilesURL  string
	SearchURL string
}

// Client fetches entries, structure files and runs sequence searches.
type Client struct {
	cfg  Config
	http *httpx.Client
}

func NewClient(cfg Config, hc *httpx.Client) *Client {
	cfg.DataURL = strings.TrimRight(cfg.DataURL, "/")
	cfg.FilesURL = strings.TrimRight(cfg.FilesURL, "/")
	return &Client{cfg: cfg, http: hc}
}

// Citation is the primary citation of an entry.
type Citation struct {
	DOI     string   `json:"pdbx_database_id_doi"`
	Title   string   `json:"title"`
	Authors []string `json:"rcsb_authors"`
	Journal string   `json:"rcsb_journal_abbrev"`
	Year    *int     `json:"year"`
	PubMed  *int     `json:"pdbx_database_id_pub_med"`
}

// EntryInfo carries the summary counts we display.
type EntryInfo struct {
	PolymerMonomerCountMaximum int       `json:"polymer_monomer_count_maximum"`
	ResolutionCombined         []float64 `json:"resolution_combined"`
	ExperimentalMethod         string    `json:"experimental_method"`
}

// Entry is the subset of /core/entry/{id} the dashboard uses.
type Entry struct {
	ID     string `json:"-"`
	Struct struct {
		Title string `json:"title"`
	} `json:"struct"`
	PrimaryCitation *Citation `json:"rcsb_primary_citation"`
	Info            EntryInfo `json:"rcsb_entry_info"`
}

// Entry fetches entry metadata.
func (c *Client) Entry(ctx context.Context, id string) (*Entry, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	var e Entry
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s/entry/%s", c.cfg.DataURL, url.PathEscape(id)), &e); err != nil {
		return nil, errors.Wrapf(err, "rcsb entry %s", id)
	}
	e.ID = id
	return &e, nil
}

// DownloadStructure returns the PDB-format coordinate file.
func (c *Client) DownloadStructure(ctx context.Context, id string) ([]byte, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	body, err := c.http.Get(ctx, fmt.Sprintf("%s/%s.pdb", c.cfg.FilesURL, url.PathEscape(id)))
	if err != nil {
		return nil, errors.Wrapf(err, "download structure %s", id)
	}
	return body, nil
}

type searchRequest struct {
	Query         searchQuery   `json:"query"`
	ReturnType    string        `json:"return_type"`
	RequestOption requestOption `json:"request_options"`
}

type searchQuery struct {
	Type       string           `json:"type"`
	Service    string           `json:"service"`
	Parameters searchParameters `json:"parameters"`
}

type searchParameters struct {
	EvalueCutoff   float64 `json:"evalue_cutoff"`
	IdentityCutoff float64 `json:"identity_cutoff"`
	SequenceType   string  `json:"sequence_type"`
	Value          string  `json:"value"`
}

type requestOption struct {
	Paginate struct {
		Start int `json:"start"`
		Rows  int `json:"rows"`
	} `json:"paginate"`
	ScoringStrategy string `json:"scoring_strategy"`
}

type searchResponse struct {
	TotalCount int `json:"total_count"`
	ResultSet  []struct {
		Identifier string  `json:"identifier"`
		Score      float64 `json:"score"`
	} `json:"result_set"`
}

// SearchSequence returns the best-scoring PDB entry for a protein sequence.
func (c *Client) SearchSequence(ctx context.Context, sequence string) (string, error) {
	reqBody := searchRequest{
		Query: searchQuery{
			Type:    "terminal",
			Service: "sequence",
			Parameters: searchParameters{
				EvalueCutoff:   0.1,
				IdentityCutoff: 0.9,
				SequenceType:   "protein",
				Value:          sequence,
			},
		},
		ReturnType: "entry",
	}
	reqBody.RequestOption.Paginate.Rows = 1
	reqBody.RequestOption.ScoringStrategy = "sequence"

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SearchURL, bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "rcsb sequence search")
	}
	// The search service answers 204 when nothing matched.
	if len(bytes.TrimSpace(body)) == 0 {
		return "", ErrNoMatch
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "failed to decode search response")
	}
	if len(resp.ResultSet) == 0 {
		return "", ErrNoMatch
	}
	return strings.ToUpper(resp.ResultSet[0].Identifier), nil
}

// ViewerURL links to the entry page on rcsb.org.
func ViewerURL(id string) string {
	return "https://www.rcsb.org/structure/" + url.PathEscape(strings.ToUpper(id))
}
