// Package features buckets sequence annotation records into display
// categories and builds Plotly figures from them.
package features

import (
	"fmt"
	"strings"
	"unicode"
)

// Category is one of the four display buckets.
type Category string

const (
	CategoryDomain Category = "domain"
	CategorySite   Category = "site"
	CategoryBond   Category = "bond"
	CategoryOther  Category = "other"
)

// Feature is a sequence-position-anchored annotation.
type Feature struct {
	Type        string `json:"type"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Description string `json:"description,omitempty"`
}

// Interval is a labelled position range ready for display.
type Interval struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Categories holds the per-bucket intervals in input order.
type Categories struct {
	Domain []Interval `json:"domain"`
	Site   []Interval `json:"site"`
	Bond   []Interval `json:"bond"`
	Other  []Interval `json:"other"`
}

// keywordGroups is checked in order; the first group with a matching
// substring wins.
var keywordGroups = []struct {
	category Category
	keywords []string
}{
	{CategoryDomain, []string{"domain", "region", "repeat", "motif"}},
	{CategorySite, []string{"site", "binding", "metal"}},
	{CategoryBond, []string{"bond", "disulfide", "cross-link"}},
}

// Classify returns the bucket for a feature type.
func Classify(featureType string) Category {
	t := strings.ToLower(featureType)
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if strings.Contains(t, kw) {
				return g.category
			}
		}
	}
	return CategoryOther
}

// Categorize places every feature into exactly one bucket.
func Categorize(feats []Feature) Categories {
	var c Categories
	for _, f := range feats {
		iv := Interval{Label: label(f), Start: f.Start, End: f.End}
		switch Classify(f.Type) {
		case CategoryDomain:
			c.Domain = append(c.Domain, iv)
		case CategorySite:
			c.Site = append(c.Site, iv)
		case CategoryBond:
			c.Bond = append(c.Bond, iv)
		default:
			c.Other = append(c.Other, iv)
		}
	}
	return c
}

// Get returns the intervals of one bucket.
func (c Categories) Get(cat Category) []Interval {
	switch cat {
	case CategoryDomain:
		return c.Domain
	case CategorySite:
		return c.Site
	case CategoryBond:
		return c.Bond
	default:
		return c.Other
	}
}

// Len is the total number of intervals across buckets.
func (c Categories) Len() int {
	return len(c.Domain) + len(c.Site) + len(c.Bond) + len(c.Other)
}

func label(f Feature) string {
	if d := strings.TrimSpace(f.Description); d != "" {
		return d
	}
	return fmt.Sprintf("%s %d-%d", titleCase(strings.ToLower(f.Type)), f.Start, f.End)
}

// titleCase upper-cases the first letter of each word.
func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		out := r
		if !unicode.IsLetter(prev) {
			out = unicode.ToUpper(r)
		}
		prev = r
		return out
	}, s)
}
