package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationPrompt(t *testing.T) {
	p := AnnotationPrompt([]string{"Lysozyme hydrolyses peptidoglycan.", "Subcellular Location: Secreted"})
	assert.Contains(t, p, `keys: "Structure", "Function", "Sequence"`)
	assert.Contains(t, p, "Lysozyme hydrolyses peptidoglycan.\nSubcellular Location: Secreted")
}

func TestPaperPrompt(t *testing.T) {
	p := PaperPrompt("10.1/x", "", "abc")
	assert.Contains(t, p, "DOI: 10.1/x")
	assert.Contains(t, p, "Question: "+DefaultQuestion)
	assert.Contains(t, p, "(first 3 chars)")
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Summary
	}{
		{
			name:  "Plain",
			input: `{"Structure": ["beta sheet"], "Function": ["hydrolase"], "Sequence": []}`,
			expected: Summary{
				Structure: []string{"beta sheet"},
				Function:  []string{"hydrolase"},
				Sequence:  []string{},
			},
		},
		{
			name:  "Fenced",
			input: "```json\n{\"Function\": [\"binds sugar\"]}\n```",
			expected: Summary{
				Function: []string{"binds sugar"},
			},
		},
		{
			name:  "StringValues",
			input: `{"Structure": "- two domains\n- one helix", "Function": "lyase"}`,
			expected: Summary{
				Structure: []string{"two domains", "one helix"},
				Function:  []string{"lyase"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSummary(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSummaryRejectsProse(t *testing.T) {
	_, err := ParseSummary("Sure! Here is a summary: the protein is an enzyme.")
	assert.Error(t, err)

	_, err = ParseSummary(`{"Structure": 5}`)
	assert.Error(t, err)
}

func TestParseSummaryRejectsEmpty(t *testing.T) {
	for _, in := range []string{"null", "{}", "```json\n{}\n```", `{"Structure": [], "Function": ""}`, `{"Notes": ["x"]}`} {
		_, err := ParseSummary(in)
		assert.ErrorIs(t, err, ErrEmptySummary, in)
	}
}

func TestSummaryIsEmpty(t *testing.T) {
	assert.True(t, Summary{}.IsEmpty())
	assert.False(t, Summary{Sequence: []string{"x"}}.IsEmpty())
}
