package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

const annotationPromptTmpl = `You're an expert assistant for structural biologists.

Based on the following UniProt annotations, extract and summarize key insights specifically related to:
- Structure (e.g., domains, motifs, folding)
- Function (e.g., enzymatic activity, pathways, immune evasion)
- Sequence features (e.g., polymorphisms, post-translational mods, isoforms)

Ignore irrelevant details like variants or drug names unless structurally significant.
Summarize in bullet points with clear sections.
Return the result strictly as a JSON object with keys: "Structure", "Function", "Sequence".
Each key maps to a list of short strings.

---
%s
---
`

const paperPromptTmpl = `You are an expert research assistant for protein engineers and biochemists.
Use the paper (DOI: %s) to answer the question.

Question: %s
---
Paper Excerpt (first %d chars):
%s
---
Answer:`

// DefaultQuestion is asked when the user leaves the question blank.
const DefaultQuestion = "What is the function of the protein?"

// AnnotationPrompt asks for a Structure/Function/Sequence summary of texts.
func AnnotationPrompt(texts []string) string {
	return fmt.Sprintf(annotationPromptTmpl, strings.Join(texts, "\n"))
}

// PaperPrompt asks question against a paper excerpt.
func PaperPrompt(doi, question, excerpt string) string {
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion
	}
	return fmt.Sprintf(paperPromptTmpl, doi, question, len([]rune(excerpt)), excerpt)
}

// Summary is the structured LLM digest of UniProt annotations.
type Summary struct {
	Structure []string `json:"Structure"`
	Function  []string `json:"Function"`
	Sequence  []string `json:"Sequence"`
}

func (s Summary) IsEmpty() bool {
	return len(s.Structure) == 0 && len(s.Function) == 0 && len(s.Sequence) == 0
}

// bullets decodes either a JSON list of strings or a single string.
type bullets []string

func (b *bullets) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*b = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return errors.Wrap(err, "expected string or list of strings")
	}
	*b = splitBullets(one)
	return nil
}

func splitBullets(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ErrEmptySummary is returned for a reply that decodes but names no facts,
// e.g. null or {}.
var ErrEmptySummary = errors.New("summary has no Structure, Function or Sequence entries")

// ParseSummary decodes the model's reply. A surrounding markdown code fence
// is tolerated; anything that is not a JSON object with at least one entry
// is an error.
func ParseSummary(text string) (Summary, error) {
	body := stripFence(text)

	var raw struct {
		Structure bullets `json:"Structure"`
		Function  bullets `json:"Function"`
		Sequence  bullets `json:"Sequence"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Summary{}, errors.Wrap(err, "summary is not a JSON object")
	}
	summary := Summary{
		Structure: raw.Structure,
		Function:  raw.Function,
		Sequence:  raw.Sequence,
	}
	if summary.IsEmpty() {
		return Summary{}, ErrEmptySummary
	}
	return summary, nil
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
