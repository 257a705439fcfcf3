/*
Package structure reads the coordinate records of a PDB file and finds residues
with unusually dense atomic neighbourhoods ("hotspots").

Only ATOM and HETATM records of the first MODEL are read, and only the first
conformer of an atom with alternate locations. Everything else in
the file (SEQRES, REMARK, CONECT, ...) is ignored.
*/
package structure

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoAtoms is returned when a file contains no coordinate records.
var ErrNoAtoms = errors.New("no ATOM or HETATM records found")

// Coords is a point in Å.
type Coords struct {
	X, Y, Z float64
}

// Atom is a single ATOM/HETATM record.
type Atom struct {
	Serial  int
	Name    string
	AltLoc  byte
	Element string
	Het     bool
	Coords
}

// Residue groups the atoms sharing a chain, sequence number and insertion code.
type Residue struct {
	Name          string
	SequenceNum   int
	InsertionCode byte
	Atoms         []Atom
}

// Chain holds residues in file order.
type Chain struct {
	Ident    string
	Residues []*Residue
}

// Structure is the parsed content of a PDB file.
type Structure struct {
	IdCode string
	Chains []*Chain
}

// ParsePDB reads a PDB-format stream.
func ParsePDB(r io.Reader) (*Structure, error) {
	s := &Structure{}
	chains := make(map[string]*Chain)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)

	lineNum := 0
	atoms := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}

		// The record name is always in the first six columns.
		switch strings.TrimSpace(line[0:6]) {
		case "HEADER":
			if len(line) >= 66 && s.IdCode == "" {
				s.IdCode = strings.TrimSpace(line[62:66])
			}
		case "ENDMDL":
			// Later models repeat the same atoms with other coordinates.
			if atoms > 0 {
				return s, nil
			}
		case "ATOM", "HETATM":
			if err := s.addAtom(chains, line); err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			atoms++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read structure")
	}
	if atoms == 0 {
		return nil, ErrNoAtoms
	}
	return s, nil
}

// addAtom parses one coordinate record. Column positions follow the PDB
// format description: serial 7-11, name 13-16, altLoc 17, resName 18-20,
// chainID 22, resSeq 23-26, iCode 27, x/y/z 31-54, element 77-78.
func (s *Structure) addAtom(chains map[string]*Chain, line string) error {
	if len(line) < 54 {
		return errors.Newf("coordinate record too short (%d columns)", len(line))
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	z, errZ := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	if err := errors.CombineErrors(errX, errors.CombineErrors(errY, errZ)); err != nil {
		return errors.Wrap(err, "invalid coordinates")
	}

	resSeq, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return errors.Wrap(err, "invalid residue number")
	}

	atom := Atom{
		Name:   strings.TrimSpace(line[12:16]),
		AltLoc: line[16],
		Het:    strings.HasPrefix(line, "HETATM"),
		Coords: Coords{X: x, Y: y, Z: z},
	}
	if serial, err := strconv.Atoi(strings.TrimSpace(line[6:11])); err == nil {
		atom.Serial = serial
	}
	if len(line) >= 78 {
		atom.Element = strings.TrimSpace(line[76:78])
	}

	chainID := strings.TrimSpace(line[21:22])
	if chainID == "" {
		chainID = "_"
	}
	chain, ok := chains[chainID]
	if !ok {
		chain = &Chain{Ident: chainID}
		chains[chainID] = chain
		s.Chains = append(s.Chains, chain)
	}

	icode := line[26]
	resName := strings.TrimSpace(line[17:20])

	// Records of one residue are contiguous in a well-formed file.
	var res *Residue
	if n := len(chain.Residues); n > 0 {
		last := chain.Residues[n-1]
		if last.SequenceNum == resSeq && last.InsertionCode == icode {
			res = last
		}
	}
	if res == nil {
		res = &Residue{Name: resName, SequenceNum: resSeq, InsertionCode: icode}
		chain.Residues = append(chain.Residues, res)
	}
	// Only the first conformer of a disordered atom is kept.
	if atom.AltLoc != ' ' {
		if _, dup := res.Atom(atom.Name); dup {
			return nil
		}
	}
	res.Atoms = append(res.Atoms, atom)
	return nil
}

// Atom returns the atom with the given name.
func (r *Residue) Atom(name string) (Atom, bool) {
	for _, a := range r.Atoms {
		if a.Name == name {
			return a, true
		}
	}
	return Atom{}, false
}

// AllAtoms returns every atom of the structure in file order.
func (s *Structure) AllAtoms() []Atom {
	var out []Atom
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			out = append(out, r.Atoms...)
		}
	}
	return out
}

// Chain returns the chain with the given identifier or nil.
func (s *Structure) Chain(ident string) *Chain {
	for _, c := range s.Chains {
		if c.Ident == ident {
			return c
		}
	}
	return nil
}
