// Package mcsa queries the Mechanism and Catalytic Site Atlas for catalytic
// residues of a structure.
package mcsa

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/httpx"
)

type SiteResidue struct {
	Chain  string `json:"chain_name"`
	Number int    `json:"resid"`
	Code   string `json:"code"`
}

// Label renders e.g. "Glu35 (A)".
func (r SiteResidue) Label() string {
	return fmt.Sprintf("%s%d (%s)", r.Code, r.Number, r.Chain)
}

type ActiveSite struct {
	Description string        `json:"description"`
	Residues    []SiteResidue `json:"residues"`
}

type response struct {
	ActiveSites []ActiveSite `json:"activeSites"`
}

type Client struct {
	baseURL string
	http    *httpx.Client
}

func NewClient(baseURL string, hc *httpx.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// ActiveSites lists catalytic sites; any failure gives an empty list.
func (c *Client) ActiveSites(ctx context.Context, pdbID string) []ActiveSite {
	u := fmt.Sprintf("%s/structure/%s", c.baseURL, url.PathEscape(strings.ToUpper(strings.TrimSpace(pdbID))))

	var resp response
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		logger.Debug("no M-CSA active sites", zap.String("pdb_id", pdbID), zap.Error(err))
		return []ActiveSite{}
	}
	if resp.ActiveSites == nil {
		return []ActiveSite{}
	}
	return resp.ActiveSites
}
