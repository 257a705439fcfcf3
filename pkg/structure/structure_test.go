package structure

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type atomSpec struct {
	record  string
	name    string
	altLoc  byte
	resName string
	chain   byte
	resSeq  int
	x, y, z float64
}

func atomLine(serial int, a atomSpec) string {
	record := a.record
	if record == "" {
		record = "ATOM"
	}
	alt := a.altLoc
	if alt == 0 {
		alt = ' '
	}
	return fmt.Sprintf("%-6s%5d %-4s%c%3s %c%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s",
		record, serial, a.name, alt, a.resName, a.chain, a.resSeq, ' ',
		a.x, a.y, a.z, 1.0, 20.0, a.name[:1])
}

func buildPDB(specs ...atomSpec) string {
	var b strings.Builder
	b.WriteString("HEADER    HYDROLASE                               01-JAN-00   1TST              \n")
	for i, a := range specs {
		b.WriteString(atomLine(i+1, a))
		b.WriteString("\n")
	}
	b.WriteString("END\n")
	return b.String()
}

func mustParse(t *testing.T, text string) *Structure {
	t.Helper()
	s, err := ParsePDB(strings.NewReader(text))
	require.NoError(t, err)
	return s
}

// waters returns n HETATM oxygens placed 2 Å from (cx, cy, cz) along a ring.
func waters(n int, chain byte, cx, cy, cz float64) []atomSpec {
	out := make([]atomSpec, n)
	for i := range out {
		dz := float64(i%5)*0.3 - 0.6
		out[i] = atomSpec{
			record: "HETATM", name: "O", resName: "HOH", chain: chain, resSeq: 500 + i,
			x: cx + 1.5, y: cy + float64(i%3)*0.5 - 0.5, z: cz + dz,
		}
	}
	return out
}

func TestParsePDB(t *testing.T) {
	text := buildPDB(
		atomSpec{name: "N", resName: "LYS", chain: 'A', resSeq: 1, x: 1, y: 2, z: 3},
		atomSpec{name: "CA", resName: "LYS", chain: 'A', resSeq: 1, x: 2, y: 2, z: 3},
		atomSpec{name: "CA", resName: "VAL", chain: 'A', resSeq: 2, x: 5, y: 2, z: 3},
		atomSpec{name: "CA", resName: "GLY", chain: 'B', resSeq: 7, x: 9, y: 9, z: 9},
		atomSpec{record: "HETATM", name: "O", resName: "HOH", chain: 'B', resSeq: 301, x: 0, y: 0, z: 0},
	)

	s := mustParse(t, text)
	assert.Equal(t, "1TST", s.IdCode)
	require.Len(t, s.Chains, 2)
	assert.Equal(t, "A", s.Chains[0].Ident)
	require.Len(t, s.Chains[0].Residues, 2)

	lys := s.Chains[0].Residues[0]
	assert.Equal(t, "LYS", lys.Name)
	assert.Equal(t, 1, lys.SequenceNum)
	assert.Len(t, lys.Atoms, 2)

	ca, ok := lys.Atom("CA")
	require.True(t, ok)
	assert.InDelta(t, 2.0, ca.X, 1e-6)
	assert.Equal(t, "C", ca.Element)

	water := s.Chain("B").Residues[1]
	assert.True(t, water.Atoms[0].Het)
	assert.Len(t, s.AllAtoms(), 5)
}

func TestParsePDBFirstModelOnly(t *testing.T) {
	first := atomLine(1, atomSpec{name: "CA", resName: "ALA", chain: 'A', resSeq: 1})
	second := atomLine(2, atomSpec{name: "CA", resName: "ALA", chain: 'A', resSeq: 1, x: 50})
	text := strings.Join([]string{"MODEL        1", first, "ENDMDL", "MODEL        2", second, "ENDMDL", "END"}, "\n")

	s := mustParse(t, text)
	require.Len(t, s.AllAtoms(), 1)
	assert.InDelta(t, 0.0, s.AllAtoms()[0].X, 1e-9)
}

func TestParsePDBErrors(t *testing.T) {
	_, err := ParsePDB(strings.NewReader("HEADER    NOTHING\nEND\n"))
	assert.True(t, errors.Is(err, ErrNoAtoms))

	bad := atomLine(1, atomSpec{name: "CA", resName: "ALA", chain: 'A', resSeq: 1})
	bad = bad[:30] + "   abc.de" + bad[39:]
	_, err = ParsePDB(strings.NewReader(bad + "\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestFindHotspotsSparseStructure(t *testing.T) {
	s := mustParse(t, buildPDB(
		atomSpec{name: "CA", resName: "ALA", chain: 'A', resSeq: 1, x: 0},
		atomSpec{name: "CA", resName: "GLY", chain: 'A', resSeq: 2, x: 100},
		atomSpec{name: "CA", resName: "SER", chain: 'A', resSeq: 3, x: 200},
	))

	assert.Empty(t, FindHotspots(s, HotspotOptions{}))
}

func TestFindHotspotsDenseResidue(t *testing.T) {
	specs := []atomSpec{
		{name: "CA", resName: "ALA", chain: 'A', resSeq: 5, x: 80},
		{name: "CA", resName: "TRP", chain: 'A', resSeq: 10},
	}
	// 30 neighbours plus the reference atom itself: 31 > 30.
	specs = append(specs, waters(30, 'A', 0, 0, 0)...)
	s := mustParse(t, buildPDB(specs...))

	hs := FindHotspots(s, HotspotOptions{})
	require.Len(t, hs, 1)
	assert.Equal(t, "A10", hs[0].Label())
	assert.Equal(t, "TRP", hs[0].ResidueName)
	assert.Equal(t, 31, hs[0].Contacts)
}

func TestFindHotspotsThresholdIsStrict(t *testing.T) {
	specs := []atomSpec{{name: "CA", resName: "TRP", chain: 'A', resSeq: 10}}
	// 29 neighbours plus itself: exactly 30, not reported.
	specs = append(specs, waters(29, 'A', 0, 0, 0)...)
	s := mustParse(t, buildPDB(specs...))

	assert.Empty(t, FindHotspots(s, HotspotOptions{}))
}

func TestFindHotspotsSorted(t *testing.T) {
	s := mustParse(t, buildPDB(
		atomSpec{name: "CA", resName: "GLY", chain: 'B', resSeq: 2, x: 0},
		atomSpec{name: "CB", resName: "GLY", chain: 'B', resSeq: 2, x: 1},
		atomSpec{name: "CA", resName: "ALA", chain: 'A', resSeq: 7, x: 100},
		atomSpec{name: "CB", resName: "ALA", chain: 'A', resSeq: 7, x: 101},
		atomSpec{name: "CA", resName: "SER", chain: 'A', resSeq: 3, x: 200},
		atomSpec{name: "CB", resName: "SER", chain: 'A', resSeq: 3, x: 201},
	))

	hs := FindHotspots(s, HotspotOptions{ContactThreshold: 1})
	assert.Equal(t, []string{"A3", "A7", "B2"}, Labels(hs))
	assert.Equal(t, "A3, A7, B2", JoinLabels(hs))
}

func TestFindHotspotsSortedNumerically(t *testing.T) {
	s := mustParse(t, buildPDB(
		atomSpec{name: "CA", resName: "GLY", chain: 'A', resSeq: 10, x: 0},
		atomSpec{name: "CB", resName: "GLY", chain: 'A', resSeq: 10, x: 1},
		atomSpec{name: "CA", resName: "ALA", chain: 'A', resSeq: 9, x: 100},
		atomSpec{name: "CB", resName: "ALA", chain: 'A', resSeq: 9, x: 101},
		atomSpec{name: "CA", resName: "SER", chain: 'A', resSeq: 100, x: 200},
		atomSpec{name: "CB", resName: "SER", chain: 'A', resSeq: 100, x: 201},
	))

	hs := FindHotspots(s, HotspotOptions{ContactThreshold: 1})
	assert.Equal(t, []string{"A9", "A10", "A100"}, Labels(hs))
}

func TestFindHotspotsSkipsResiduesWithoutReferenceAtom(t *testing.T) {
	specs := []atomSpec{{name: "N", resName: "ALA", chain: 'A', resSeq: 1}}
	specs = append(specs, waters(40, 'A', 0, 0, 0)...)
	s := mustParse(t, buildPDB(specs...))

	assert.Empty(t, FindHotspots(s, HotspotOptions{}))
}

func TestFindHotspotsAltLocFirstWins(t *testing.T) {
	s := mustParse(t, buildPDB(
		atomSpec{name: "CA", altLoc: 'A', resName: "SER", chain: 'A', resSeq: 4, x: 0},
		atomSpec{name: "CA", altLoc: 'B', resName: "SER", chain: 'A', resSeq: 4, x: 100},
		atomSpec{name: "OG", resName: "SER", chain: 'A', resSeq: 4, x: 1},
	))

	require.Len(t, s.Chains[0].Residues, 1)
	hs := FindHotspots(s, HotspotOptions{ContactThreshold: 1})
	require.Len(t, hs, 1)
	assert.Equal(t, 2, hs[0].Contacts)
}

func TestParsePDBKeepsFirstConformer(t *testing.T) {
	specs := []atomSpec{{name: "CA", resName: "LYS", chain: 'A', resSeq: 1}}
	for i := 1; i <= 15; i++ {
		name := fmt.Sprintf("C%d", i)
		x := float64(i) * 0.2
		specs = append(specs,
			atomSpec{name: name, altLoc: 'A', resName: "LYS", chain: 'A', resSeq: 1, x: x},
			atomSpec{name: name, altLoc: 'B', resName: "LYS", chain: 'A', resSeq: 1, x: x, y: 0.5},
		)
	}
	s := mustParse(t, buildPDB(specs...))

	require.Len(t, s.AllAtoms(), 16)
	c1, ok := s.Chains[0].Residues[0].Atom("C1")
	require.True(t, ok)
	assert.Equal(t, byte('A'), c1.AltLoc)
	assert.InDelta(t, 0.0, c1.Y, 1e-9)

	// 16 distinct atoms do not pass the default threshold of 30.
	assert.Empty(t, FindHotspots(s, HotspotOptions{}))
	hs := FindHotspots(s, HotspotOptions{ContactThreshold: 15})
	require.Len(t, hs, 1)
	assert.Equal(t, 16, hs[0].Contacts)
}

func TestSequencesAndFASTA(t *testing.T) {
	s := mustParse(t, buildPDB(
		atomSpec{name: "CA", resName: "MET", chain: 'A', resSeq: 1},
		atomSpec{name: "CA", resName: "LYS", chain: 'A', resSeq: 2},
		atomSpec{record: "HETATM", name: "O", resName: "HOH", chain: 'A', resSeq: 300},
		atomSpec{record: "HETATM", name: "O", resName: "HOH", chain: 'W', resSeq: 301},
	))

	seqs := s.Sequences()
	require.Len(t, seqs, 1)
	assert.Equal(t, ChainSequence{Chain: "A", Sequence: "MK"}, seqs[0])

	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, "1tst", seqs))
	assert.Equal(t, ">1TST_A\nMK\n", buf.String())
}
