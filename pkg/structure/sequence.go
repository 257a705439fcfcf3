package structure

import (
	"fmt"
	"io"
	"strings"
)

// aminoThreeToOne maps residue names to one-letter codes. Names not listed
// here (waters, ligands, ions) are left out of chain sequences.
var aminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O', "MSE": 'M',
	"UNK": 'X', "ASX": 'B', "GLX": 'Z',
}

// ChainSequence is the one-letter sequence of the residues with coordinates.
type ChainSequence struct {
	Chain    string
	Sequence string
}

// Sequences returns the ATOM-derived sequence of every chain containing
// at least one amino-acid residue.
func (s *Structure) Sequences() []ChainSequence {
	var out []ChainSequence
	for _, c := range s.Chains {
		var b strings.Builder
		for _, r := range c.Residues {
			if one, ok := aminoThreeToOne[r.Name]; ok {
				b.WriteByte(one)
			}
		}
		if b.Len() > 0 {
			out = append(out, ChainSequence{Chain: c.Ident, Sequence: b.String()})
		}
	}
	return out
}

// WriteFASTA writes the chain sequences as FASTA records named <id>_<chain>,
// wrapping lines at 60 residues.
func WriteFASTA(w io.Writer, id string, seqs []ChainSequence) error {
	for _, cs := range seqs {
		if _, err := fmt.Fprintf(w, ">%s_%s\n", strings.ToUpper(id), cs.Chain); err != nil {
			return err
		}
		for i := 0; i < len(cs.Sequence); i += 60 {
			end := min(i+60, len(cs.Sequence))
			if _, err := fmt.Fprintln(w, cs.Sequence[i:end]); err != nil {
				return err
			}
		}
	}
	return nil
}
