package unpaywall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/protlit/pkg/httpx"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "me@example.org", r.URL.Query().Get("email"))
		if r.URL.Path != "/v2/10.1000/xyz" {
			http.Error(w, `{"error": true}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{
			"doi": "10.1000/xyz",
			"doi_url": "https://doi.org/10.1000/xyz",
			"is_oa": true,
			"best_oa_location": {"url": "https://example.org/a", "url_for_pdf": ""},
			"oa_locations": [{"url": "https://example.org/a"}, {"url_for_pdf": "https://example.org/a.pdf"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v2", "me@example.org", httpx.New(httpx.Options{}))

	rec, err := c.Lookup(context.Background(), "10.1000/xyz")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.IsOA)
	assert.Equal(t, "https://example.org/a.pdf", rec.PDFURL())

	rec, err = c.Lookup(context.Background(), "10.1000/missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, "", rec.PDFURL())
}

func TestLookupRequiresEmail(t *testing.T) {
	c := NewClient("http://unused", "", httpx.New(httpx.Options{}))
	_, err := c.Lookup(context.Background(), "10.1000/xyz")
	assert.Error(t, err)
}
