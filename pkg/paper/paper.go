// Package paper downloads open-access PDFs and pulls plain text out of them.
package paper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"

	"github.com/yumyai/protlit/pkg/httpx"
)

const DefaultMaxChars = 10000

var ErrNoText = errors.New("pdf contains no extractable text")

type Fetcher struct {
	http *httpx.Client
}

func NewFetcher(hc *httpx.Client) *Fetcher {
	return &Fetcher{http: hc}
}

// FetchText downloads the PDF at url and returns an excerpt of at most
// maxChars runes of its text. maxChars <= 0 means DefaultMaxChars.
func (f *Fetcher) FetchText(ctx context.Context, url string, maxChars int) (string, error) {
	body, err := f.http.Get(ctx, url)
	if err != nil {
		return "", errors.Wrap(err, "download paper")
	}
	text, err := ExtractText(body)
	if err != nil {
		return "", err
	}
	return Excerpt(text, maxChars), nil
}

// ExtractText reads every page of an in-memory PDF.
func ExtractText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "open pdf")
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "extract pdf text")
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", errors.Wrap(err, "read pdf text")
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", ErrNoText
	}
	return buf.String(), nil
}

// Truncate cuts s to maxChars runes.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

// Section is a run of text under one heading. The text before the first
// heading has an empty Heading.
type Section struct {
	Heading string
	Text    string
}

func (s Section) String() string {
	if s.Heading == "" {
		return s.Text
	}
	return fmt.Sprintf("%s\n%s", s.Heading, s.Text)
}

// a line of four or more capitals and spaces
var headingRe = regexp.MustCompile(`\n([A-Z ]{4,})\n`)

// SplitSections splits text on all-caps heading lines.
func SplitSections(text string) []Section {
	var sections []Section

	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	prev := 0
	heading := ""
	for _, m := range matches {
		body := text[prev:m[0]]
		if heading != "" || strings.TrimSpace(body) != "" {
			sections = append(sections, Section{Heading: heading, Text: body})
		}
		heading = text[m[2]:m[3]]
		prev = m[1]
	}
	body := text[prev:]
	if heading != "" || strings.TrimSpace(body) != "" {
		sections = append(sections, Section{Heading: heading, Text: body})
	}
	return sections
}

// backMatter headings end the body of a paper.
var backMatter = map[string]bool{
	"REFERENCES":       true,
	"ACKNOWLEDGMENTS":  true,
	"ACKNOWLEDGEMENTS": true,
	"BIBLIOGRAPHY":     true,
}

// Excerpt joins the sections before the first back-matter heading and cuts
// the result to maxChars runes. Text that is all back matter is kept whole.
func Excerpt(text string, maxChars int) string {
	var b strings.Builder
	for _, sec := range SplitSections(text) {
		if backMatter[strings.TrimSpace(sec.Heading)] {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sec.String())
	}
	if strings.TrimSpace(b.String()) == "" {
		return Truncate(text, maxChars)
	}
	return Truncate(b.String(), maxChars)
}
