package paper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/protlit/pkg/httpx"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ΔΔ", Truncate("ΔΔG", 2))
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Len(t, Truncate(string(make([]byte, DefaultMaxChars+5)), 0), DefaultMaxChars)
}

func TestSplitSections(t *testing.T) {
	text := "Title line\nABSTRACT\nWe study lysozyme.\nINTRODUCTION\nEnzymes are.\nMore text\nRESULTS AND DISCUSSION\nDone."

	sections := SplitSections(text)
	require.Len(t, sections, 4)
	assert.Equal(t, "", sections[0].Heading)
	assert.Equal(t, "Title line", sections[0].Text)
	assert.Equal(t, "ABSTRACT", sections[1].Heading)
	assert.Equal(t, "We study lysozyme.", sections[1].Text)
	assert.Equal(t, "INTRODUCTION", sections[2].Heading)
	assert.Equal(t, "Enzymes are.\nMore text", sections[2].Text)
	assert.Equal(t, "RESULTS AND DISCUSSION", sections[3].Heading)
	assert.Equal(t, "RESULTS AND DISCUSSION\nDone.", sections[3].String())
}

func TestSplitSectionsNoHeadings(t *testing.T) {
	sections := SplitSections("just a paragraph")
	require.Len(t, sections, 1)
	assert.Equal(t, "just a paragraph", sections[0].Text)
	assert.Empty(t, SplitSections(""))
}

func TestExcerptDropsBackMatter(t *testing.T) {
	text := "Title\nABSTRACT\nLysozyme cleaves.\nREFERENCES\n1. Phillips 1966\nAPPENDIX\nTables"

	assert.Equal(t, "Title\nABSTRACT\nLysozyme cleaves.", Excerpt(text, 0))
	assert.Equal(t, "Title\nABS", Excerpt(text, 9))
	assert.Equal(t, "plain text", Excerpt("plain text", 100))
	assert.Equal(t, "\nREFERENCES\n1. Blake", Excerpt("\nREFERENCES\n1. Blake", 100))
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	_, err := ExtractText([]byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestFetchTextStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewFetcher(httpx.New(httpx.Options{}))
	_, err := f.FetchText(context.Background(), srv.URL+"/paper.pdf", 100)
	require.Error(t, err)
	assert.True(t, httpx.IsStatus(err, http.StatusGone))
}
