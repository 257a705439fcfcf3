// Package predict submits point mutations to structure-based stability and
// binding-affinity predictors.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/httpx"
)

type Service string

const (
	DynaMut Service = "dynamut"
	MCSMPPI Service = "mcsm_ppi"
)

var ErrUnknownService = errors.New("unknown prediction service")

// ParseService accepts the form value used by the dashboard.
func ParseService(raw string) (Service, error) {
	switch s := Service(strings.ToLower(strings.TrimSpace(raw))); s {
	case DynaMut, MCSMPPI:
		return s, nil
	case "":
		return DynaMut, nil
	default:
		return "", errors.Wrapf(ErrUnknownService, "%q", raw)
	}
}

// MutationRequest names one substitution, e.g. chain A residue 123 to C.
type MutationRequest struct {
	Chain    string `json:"chain"`
	ResNum   int    `json:"resnum"`
	Mutation string `json:"mutation"`
}

var siteRe = regexp.MustCompile(`^([A-Za-z0-9])(-?\d+)$`)

// ParseSite splits "A123" into chain "A" and residue 123.
func ParseSite(site string) (string, int, error) {
	m := siteRe.FindStringSubmatch(strings.TrimSpace(site))
	if m == nil {
		return "", 0, errors.Newf("invalid site %q: expected chain letter followed by residue number", site)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid residue number in %q", site)
	}
	return strings.ToUpper(m[1]), n, nil
}

type Prediction struct {
	Service Service  `json:"service"`
	DDG     *float64 `json:"ddg"`
}

type Client struct {
	urls map[Service]string
	http *httpx.Client
}

func NewClient(dynamutURL, mcsmPPIURL string, hc *httpx.Client) *Client {
	return &Client{
		urls: map[Service]string{DynaMut: dynamutURL, MCSMPPI: mcsmPPIURL},
		http: hc,
	}
}

// Predict posts the structure file and mutation as multipart form data.
func (c *Client) Predict(ctx context.Context, service Service, structure []byte, mut MutationRequest) (*Prediction, error) {
	endpoint, ok := c.urls[service]
	if !ok || endpoint == "" {
		return nil, errors.Wrapf(ErrUnknownService, "%q", service)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("structure", "structure.pdb")
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err := fw.Write(structure); err != nil {
		return nil, errors.Wrap(err, "write structure")
	}
	fields := [][2]string{
		{"chain", mut.Chain},
		{"resnum", strconv.Itoa(mut.ResNum)},
		{"mutation", mut.Mutation},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, errors.Wrapf(err, "write field %s", f[0])
		}
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s prediction", service)
	}

	pred := Prediction{Service: service}
	if err := json.Unmarshal(resp, &pred); err != nil {
		return nil, errors.Wrapf(err, "decode %s response", service)
	}
	pred.Service = service
	return &pred, nil
}
