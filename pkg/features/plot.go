package features

import (
	"encoding/json"
	"fmt"
)

// Figure is a Plotly figure: it marshals to the {data, layout} object that
// Plotly.newPlot accepts.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the two trace kinds used here: horizontal bars and scatter lines.
type Trace struct {
	Type          string    `json:"type"`
	X             []float64 `json:"x"`
	Y             []float64 `json:"y"`
	Base          *float64  `json:"base,omitempty"`
	Width         float64   `json:"width,omitempty"`
	Orientation   string    `json:"orientation,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	Name          string    `json:"name,omitempty"`
	Line          *Line     `json:"line,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	ShowLegend    *bool     `json:"showlegend,omitempty"`
}

type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
}

type Marker struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

type Axis struct {
	Title    string    `json:"title,omitempty"`
	Range    []float64 `json:"range,omitempty"`
	TickVals []float64 `json:"tickvals,omitempty"`
	TickText []string  `json:"ticktext,omitempty"`
	ShowGrid bool      `json:"showgrid"`
}

type Margin struct {
	T int `json:"t"`
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
}

type Layout struct {
	Title       string  `json:"title,omitempty"`
	XAxis       Axis    `json:"xaxis"`
	YAxis       Axis    `json:"yaxis"`
	PlotBGColor string  `json:"plot_bgcolor,omitempty"`
	Height      int     `json:"height,omitempty"`
	Margin      *Margin `json:"margin,omitempty"`
	ShowLegend  bool    `json:"showlegend"`
}

// JSON marshals the figure for embedding in a page.
func (f Figure) JSON() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type categoryStyle struct {
	category Category
	color    string
	y        float64
	label    string
}

// categoryStyles fixes colour and row per bucket, top to bottom.
var categoryStyles = []categoryStyle{
	{CategoryDomain, "#4F81BD", 0.8, "Domain/Region"},
	{CategorySite, "#C0504D", 0.6, "Sites (Active, Binding, etc)"},
	{CategoryBond, "#9BBB59", 0.4, "Bonds"},
	{CategoryOther, "#7F7F7F", 0.2, "Other Features"},
}

// PlotDomains draws one trace per feature: bonds as a line between their two
// ends, everything else as a horizontal bar starting at the feature start.
func PlotDomains(feats []Feature, seqLength int) Figure {
	grouped := Categorize(feats)
	hide := false

	fig := Figure{Data: []Trace{}}
	for _, style := range categoryStyles {
		for _, iv := range grouped.Get(style.category) {
			x0, x1 := float64(iv.Start), float64(iv.End)
			hover := fmt.Sprintf("%s<br>%d - %d", iv.Label, iv.Start, iv.End)

			if style.category == CategoryBond {
				fig.Data = append(fig.Data, Trace{
					Type:          "scatter",
					X:             []float64{x0, x1},
					Y:             []float64{style.y, style.y},
					Mode:          "lines+markers",
					Line:          &Line{Color: style.color, Width: 2},
					Marker:        &Marker{Color: style.color, Size: 8},
					HoverTemplate: hover,
					Name:          style.label,
					ShowLegend:    &hide,
				})
				continue
			}

			base := x0
			fig.Data = append(fig.Data, Trace{
				Type:          "bar",
				X:             []float64{max(1, x1-x0)},
				Y:             []float64{style.y},
				Base:          &base,
				Width:         0.1,
				Orientation:   "h",
				Name:          style.label,
				Marker:        &Marker{Color: style.color},
				HoverTemplate: hover,
				ShowLegend:    &hide,
			})
		}
	}

	tickVals := make([]float64, len(categoryStyles))
	tickText := make([]string, len(categoryStyles))
	for i, s := range categoryStyles {
		tickVals[i] = s.y
		tickText[i] = s.label
	}

	fig.Layout = Layout{
		Title: "Protein Domain and Feature Map (UniProt)",
		XAxis: Axis{
			Title:    "Amino Acid Position",
			Range:    []float64{0, float64(seqLength)},
			ShowGrid: true,
		},
		YAxis: Axis{
			TickVals: tickVals,
			TickText: tickText,
			Range:    []float64{0, 1},
		},
		PlotBGColor: "#FAFAFA",
		Height:      350,
		Margin:      &Margin{T: 40, L: 40, R: 20, B: 40},
	}
	return fig
}

// PlotConservation draws per-residue conservation as a single line.
func PlotConservation(scores []float64) Figure {
	x := make([]float64, len(scores))
	for i := range scores {
		x[i] = float64(i + 1)
	}

	y := make([]float64, len(scores))
	copy(y, scores)

	return Figure{
		Data: []Trace{{
			Type: "scatter",
			X:    x,
			Y:    y,
			Mode: "lines+markers",
			Name: "Conservation Score",
		}},
		Layout: Layout{
			XAxis: Axis{Title: "Residue Number"},
			YAxis: Axis{Title: "Score", Range: []float64{0, 1}},
		},
	}
}
