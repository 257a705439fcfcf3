// Package httpx is the outbound HTTP helper shared by every service client.
// It sets the User-Agent, throttles requests and turns non-2xx replies into
// *StatusError values.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds any single response we read into memory.
const maxBodyBytes = 64 << 20

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}
	return false
}

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// Client wraps http.Client with a shared rate limiter.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// New builds a Client. Zero values fall back to a 60s timeout and no throttling.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		userAgent: opts.UserAgent,
	}
}

// Do sends req after waiting for the limiter and returns the response body.
// The caller never sees a response whose status is not 2xx.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, query included
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, errors.Wrapf(err, "%s %s", req.Method, logURL(req.URL))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", logURL(req.URL))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return nil, &StatusError{URL: logURL(req.URL), StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

// Get fetches rawURL and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	return c.Do(req)
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		where := "response"
		if u, perr := url.Parse(rawURL); perr == nil {
			where = logURL(u)
		}
		return errors.Wrapf(err, "failed to decode response from %s", where)
	}
	return nil
}

// logURL drops credentials, query and fragment so that contact emails and
// keys passed as parameters stay out of errors and logs.
func logURL(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	c.ForceQuery = false
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}
