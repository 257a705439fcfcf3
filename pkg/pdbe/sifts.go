// Package pdbe reads cross-reference mappings from the PDBe SIFTS API.
package pdbe

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/httpx"
)

// Mapping is one chain segment aligned to an accession.
type Mapping struct {
	EntityID int    `json:"entity_id"`
	ChainID  string `json:"chain_id"`
	UnpStart int    `json:"unp_start"`
	UnpEnd   int    `json:"unp_end"`
}

// Accession is a UniProt entry mapped to the structure.
type Accession struct {
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	Mappings   []Mapping `json:"mappings"`
}

// SIFTS is the per-entry payload of /mappings/uniprot/{id}.
type SIFTS struct {
	UniProt map[string]Accession `json:"UniProt"`
}

type Client struct {
	baseURL string
	http    *httpx.Client
}

func NewClient(baseURL string, hc *httpx.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Mappings fetches the UniProt mappings of a structure. A missing entry is
// reported as an empty SIFTS value.
func (c *Client) Mappings(ctx context.Context, pdbID string) (SIFTS, error) {
	id := strings.ToLower(strings.TrimSpace(pdbID))

	var payload map[string]SIFTS
	err := c.http.GetJSON(ctx, fmt.Sprintf("%s/mappings/uniprot/%s", c.baseURL, url.PathEscape(id)), &payload)
	if err != nil {
		return SIFTS{}, err
	}
	return payload[id], nil
}

// UniProtAccessions lists the accessions mapped to pdbID in sorted order.
// Any failure (unknown entry, service down, bad payload) yields an empty list:
// a structure without a mapping simply has no sequence annotations.
func (c *Client) UniProtAccessions(ctx context.Context, pdbID string) []string {
	sifts, err := c.Mappings(ctx, pdbID)
	if err != nil {
		logger.Warn("SIFTS mapping unavailable", zap.String("pdb_id", pdbID), zap.Error(err))
		return []string{}
	}

	accs := make([]string, 0, len(sifts.UniProt))
	for acc := range sifts.UniProt {
		accs = append(accs, acc)
	}
	sort.Strings(accs)
	return accs
}
