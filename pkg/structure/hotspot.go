package structure

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultReferenceAtom    = "CA"
	DefaultDistanceCutoff   = 6.0
	DefaultContactThreshold = 30
)

// HotspotOptions tunes FindHotspots. Zero fields take the defaults above.
type HotspotOptions struct {
	ReferenceAtom    string
	DistanceCutoff   float64
	ContactThreshold int
}

func (o HotspotOptions) withDefaults() HotspotOptions {
	if o.ReferenceAtom == "" {
		o.ReferenceAtom = DefaultReferenceAtom
	}
	if o.DistanceCutoff <= 0 {
		o.DistanceCutoff = DefaultDistanceCutoff
	}
	if o.ContactThreshold <= 0 {
		o.ContactThreshold = DefaultContactThreshold
	}
	return o
}

// Hotspot is a residue whose reference atom has more than the threshold
// number of atoms within the cutoff.
type Hotspot struct {
	Chain         string `json:"chain"`
	ResidueName   string `json:"residue_name"`
	SequenceNum   int    `json:"residue_number"`
	InsertionCode string `json:"insertion_code,omitempty"`
	Contacts      int    `json:"contacts"`
}

// Label renders the residue as chain + number, e.g. "A123".
func (h Hotspot) Label() string {
	return fmt.Sprintf("%s%d%s", h.Chain, h.SequenceNum, h.InsertionCode)
}

// FindHotspots counts, for every residue with a reference atom, the atoms of
// the whole structure lying strictly closer than the cutoff, the reference atom
// itself included. The scan is a plain nested loop; inputs are single structures.
//
// The result is sorted by chain, then residue number, then insertion code.
func FindHotspots(s *Structure, opts HotspotOptions) []Hotspot {
	opts = opts.withDefaults()
	atoms := s.AllAtoms()
	cutoff2 := opts.DistanceCutoff * opts.DistanceCutoff

	var hotspots []Hotspot
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			ref, ok := r.Atom(opts.ReferenceAtom)
			if !ok {
				continue
			}

			count := 0
			for i := range atoms {
				if squaredDistance(atoms[i].Coords, ref.Coords) < cutoff2 {
					count++
				}
			}
			if count <= opts.ContactThreshold {
				continue
			}

			h := Hotspot{
				Chain:       c.Ident,
				ResidueName: r.Name,
				SequenceNum: r.SequenceNum,
				Contacts:    count,
			}
			if r.InsertionCode != ' ' && r.InsertionCode != 0 {
				h.InsertionCode = string(r.InsertionCode)
			}
			hotspots = append(hotspots, h)
		}
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		a, b := hotspots[i], hotspots[j]
		if a.Chain != b.Chain {
			return a.Chain < b.Chain
		}
		if a.SequenceNum != b.SequenceNum {
			return a.SequenceNum < b.SequenceNum
		}
		return a.InsertionCode < b.InsertionCode
	})
	return hotspots
}

// Labels maps hotspots to their display labels.
func Labels(hs []Hotspot) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Label()
	}
	return out
}

// JoinLabels is a convenience for log lines and plain-text output.
func JoinLabels(hs []Hotspot) string {
	return strings.Join(Labels(hs), ", ")
}

func squaredDistance(a, b Coords) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
