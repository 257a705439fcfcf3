package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSequence(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{name: "Plain", input: "mkvl aiv\n", expected: "MKVLAIV"},
		{name: "FASTA", input: ">sp|P00698|LYSC\nKVFGR\nCELAA\n", expected: "KVFGRCELAA"},
		{name: "FirstRecordOnly", input: ">a\nMKV\n>b\nGGG", expected: "MKV"},
		{name: "StopAndGap", input: "MK-V*", expected: "MKV"},
		{name: "Empty", input: "  \n", shouldError: true},
		{name: "HeaderOnly", input: ">nothing", shouldError: true},
		{name: "BadResidue", input: "MKV1", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanSequence(tt.input)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAlignment(t *testing.T) {
	seqs, err := ParseAlignment(">s1\nAC-\nGT\n>s2\nacgg\nt\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"AC-GT", "ACGGT"}, seqs)

	seqs, err = ParseAlignment("ACGT\nACGA\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGT", "ACGA"}, seqs)

	_, err = ParseAlignment("\n")
	assert.Error(t, err)
}

func TestConservationScores(t *testing.T) {
	scores, err := ConservationScores([]string{"ACGT", "ACGA", "AC-A", "TCGA"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.75, 1.0, 0.75, 0.75}, scores, 1e-9)

	_, err = ConservationScores([]string{"ACG", "AC"})
	assert.Error(t, err)

	_, err = ConservationScores(nil)
	assert.Error(t, err)
}
