// Sequence input handling and alignment conservation.

package model

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrEmptySequence = errors.New("input sequence is empty")

// the 20 standard residues plus the IUPAC ambiguity codes and selenocysteine/pyrrolysine
const aminoAlphabet = "ACDEFGHIKLMNPQRSTVWYBZXUO"

// CleanSequence accepts a FASTA record or a bare sequence and returns the
// upper-cased residues with headers and whitespace removed. Only the first
// FASTA record is used.
func CleanSequence(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", ErrEmptySequence
	}

	var sb strings.Builder
	seenHeader := false
	for _, line := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			if seenHeader || sb.Len() > 0 {
				break
			}
			seenHeader = true
			continue
		}
		for _, r := range trimmed {
			switch {
			case r == ' ' || r == '\t' || r == '\r':
				continue
			case r == '*' || r == '-':
				// stop codon or gap
				continue
			}
			up := strings.ToUpper(string(r))
			if !strings.Contains(aminoAlphabet, up) {
				return "", errors.Newf("invalid residue %q in sequence", r)
			}
			sb.WriteString(up)
		}
	}

	if sb.Len() == 0 {
		return "", ErrEmptySequence
	}
	return sb.String(), nil
}

// ParseAlignment reads aligned FASTA. Lines without any header are treated
// as one sequence per line.
func ParseAlignment(raw string) ([]string, error) {
	var seqs []string
	var cur strings.Builder
	inRecord := false

	flush := func() {
		if cur.Len() > 0 {
			seqs = append(seqs, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ">"):
			flush()
			inRecord = true
		case inRecord:
			cur.WriteString(strings.ToUpper(trimmed))
		default:
			seqs = append(seqs, strings.ToUpper(trimmed))
		}
	}
	flush()

	if len(seqs) == 0 {
		return nil, errors.New("alignment contains no sequences")
	}
	return seqs, nil
}

// ConservationScores returns, per alignment column, the frequency of the
// most common symbol. Gaps count as symbols.
func ConservationScores(alignment []string) ([]float64, error) {
	if len(alignment) == 0 {
		return nil, errors.New("alignment contains no sequences")
	}

	cols := []rune(alignment[0])
	length := len(cols)
	rows := make([][]rune, len(alignment))
	for i, s := range alignment {
		rows[i] = []rune(s)
		if len(rows[i]) != length {
			return nil, errors.Newf("sequence %d has length %d, expected %d", i+1, len(rows[i]), length)
		}
	}

	scores := make([]float64, length)
	counts := make(map[rune]int)
	for col := 0; col < length; col++ {
		clear(counts)
		top := 0
		for _, row := range rows {
			counts[row[col]]++
			if counts[row[col]] > top {
				top = counts[row[col]]
			}
		}
		scores[col] = float64(top) / float64(len(rows))
	}
	return scores, nil
}
