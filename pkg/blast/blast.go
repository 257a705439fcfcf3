// Package blast drives remote searches through the NCBI BLAST URL API.
//
// A search is submitted with CMD=Put, which answers with a request id (RID)
// and an estimated time to completion. The caller then polls the SearchInfo
// object until it reports READY and fetches the text report.
package blast

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/httpx"
)

type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
	StatusUnknown Status = "UNKNOWN"
)

var ErrNoRID = errors.New("BLAST submission returned no RID")

type Submission struct {
	RID string
	// RTOE is NCBI's estimate of how long the search will take.
	RTOE time.Duration
}

type SearchInfo struct {
	Status  Status
	HasHits bool
}

type Config struct {
	URL      string
	Program  string
	Database string
}

type Client struct {
	cfg  Config
	http *httpx.Client
}

func NewClient(cfg Config, hc *httpx.Client) *Client {
	if cfg.Program == "" {
		cfg.Program = "blastp"
	}
	if cfg.Database == "" {
		cfg.Database = "pdbaa"
	}
	return &Client{cfg: cfg, http: hc}
}

var (
	ridRe     = regexp.MustCompile(`(?m)^\s*RID = (\S+)`)
	rtoeRe    = regexp.MustCompile(`(?m)^\s*RTOE = (\d+)`)
	statusRe  = regexp.MustCompile(`(?m)^\s*Status=(\w+)`)
	hasHitsRe = regexp.MustCompile(`(?m)^\s*ThereAreHits=yes`)
)

// Submit queues query (raw residues or FASTA) and returns its RID.
func (c *Client) Submit(ctx context.Context, query string) (Submission, error) {
	form := url.Values{}
	form.Set("CMD", "Put")
	form.Set("PROGRAM", c.cfg.Program)
	form.Set("DATABASE", c.cfg.Database)
	form.Set("QUERY", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return Submission{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.http.Do(req)
	if err != nil {
		return Submission{}, errors.Wrap(err, "submit BLAST search")
	}
	return ParseSubmission(string(body))
}

// ParseSubmission reads the QBlastInfo block of a CMD=Put reply.
func ParseSubmission(body string) (Submission, error) {
	m := ridRe.FindStringSubmatch(body)
	if m == nil {
		return Submission{}, ErrNoRID
	}
	sub := Submission{RID: m[1]}
	if m := rtoeRe.FindStringSubmatch(body); m != nil {
		secs, _ := strconv.Atoi(m[1])
		sub.RTOE = time.Duration(secs) * time.Second
	}
	return sub, nil
}

// Poll checks the state of rid once.
func (c *Client) Poll(ctx context.Context, rid string) (SearchInfo, error) {
	body, err := c.http.Get(ctx, c.getURL(rid, "FORMAT_OBJECT", "SearchInfo"))
	if err != nil {
		return SearchInfo{}, errors.Wrapf(err, "poll BLAST %s", rid)
	}
	return ParseSearchInfo(string(body)), nil
}

// ParseSearchInfo maps a SearchInfo reply to a status. Anything unrecognised
// is StatusUnknown, which NCBI also uses for expired RIDs.
func ParseSearchInfo(body string) SearchInfo {
	m := statusRe.FindStringSubmatch(body)
	if m == nil {
		return SearchInfo{Status: StatusUnknown}
	}
	info := SearchInfo{Status: StatusUnknown}
	switch s := Status(m[1]); s {
	case StatusWaiting, StatusReady, StatusFailed:
		info.Status = s
	}
	info.HasHits = info.Status == StatusReady && hasHitsRe.MatchString(body)
	return info
}

// Fetch returns the plain-text report for a finished search.
func (c *Client) Fetch(ctx context.Context, rid string) (string, error) {
	body, err := c.http.Get(ctx, c.getURL(rid, "FORMAT_TYPE", "Text"))
	if err != nil {
		return "", errors.Wrapf(err, "fetch BLAST %s", rid)
	}
	return string(body), nil
}

func (c *Client) getURL(rid, key, value string) string {
	q := url.Values{}
	q.Set("CMD", "Get")
	q.Set("RID", rid)
	q.Set(key, value)
	return c.cfg.URL + "?" + q.Encode()
}

// WebURL opens NCBI's web form pre-filled with query.
func WebURL(program, query string) string {
	params := url.Values{}
	params.Add("PROGRAM", program)
	params.Add("PAGE_TYPE", "BlastSearch")
	params.Add("QUERY", query)
	return "https://blast.ncbi.nlm.nih.gov/Blast.cgi?" + params.Encode()
}
