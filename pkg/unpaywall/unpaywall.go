// Package unpaywall locates open-access copies of papers by DOI.
package unpaywall

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/httpx"
)

type Location struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
	HostType  string `json:"host_type"`
	License   string `json:"license"`
}

// Record is the subset of the /v2/{doi} response the dashboard uses.
type Record struct {
	DOI            string     `json:"doi"`
	DOIURL         string     `json:"doi_url"`
	IsOA           bool       `json:"is_oa"`
	BestOALocation *Location  `json:"best_oa_location"`
	OALocations    []Location `json:"oa_locations"`
}

// PDFURL returns the best direct PDF link, or "" when none is known.
func (r *Record) PDFURL() string {
	if r == nil {
		return ""
	}
	if r.BestOALocation != nil && r.BestOALocation.URLForPDF != "" {
		return r.BestOALocation.URLForPDF
	}
	for _, loc := range r.OALocations {
		if loc.URLForPDF != "" {
			return loc.URLForPDF
		}
	}
	return ""
}

type Client struct {
	baseURL string
	email   string
	http    *httpx.Client
}

// NewClient needs a contact email; Unpaywall rejects anonymous requests.
func NewClient(baseURL, email string, hc *httpx.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), email: email, http: hc}
}

// Lookup returns the record for doi. Unknown DOIs and non-200 replies give
// (nil, nil); only transport problems and bad payloads are errors.
func (c *Client) Lookup(ctx context.Context, doi string) (*Record, error) {
	if c.email == "" {
		return nil, errors.WithHint(errors.New("unpaywall email not configured"),
			"set UNPAYWALL_EMAIL or PROTLIT_UNPAYWALL_EMAIL")
	}

	u := fmt.Sprintf("%s/%s?email=%s", c.baseURL, url.PathEscape(strings.TrimSpace(doi)), url.QueryEscape(c.email))

	var rec Record
	err := c.http.GetJSON(ctx, u, &rec)
	var se *httpx.StatusError
	if errors.As(err, &se) && se.StatusCode != http.StatusOK {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
