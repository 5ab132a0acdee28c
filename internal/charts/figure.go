// Package charts builds Plotly figure specifications for the dashboard. The
// browser renders them with plotly.js; nothing here draws.
package charts

import (
	"encoding/json"
	"html/template"
)

const chartHeight = 500

// Figure is a Plotly figure: traces plus layout
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a scatter trace
type Trace struct {
	Type string    `json:"type"`
	Mode string    `json:"mode"`
	Name string    `json:"name"`
	X    []int     `json:"x"`
	Y    []float64 `json:"y"`
	Line Line      `json:"line"`
}

// Line styles a trace or shape outline
type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Layout is the subset of Plotly layout options the dashboard uses
type Layout struct {
	Title       string       `json:"title"`
	Height      int          `json:"height"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Axis holds an axis title
type Axis struct {
	Title string `json:"title"`
}

// Legend positions the legend
type Legend struct {
	Orientation string  `json:"orientation"`
	YAnchor     string  `json:"yanchor"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
}

// Shape is a layout shape such as a reference line
type Shape struct {
	Type string  `json:"type"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Line Line    `json:"line"`
}

// Annotation is a text label placed in data coordinates
type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

// Font styles annotation text
type Font struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// JSON renders the figure for embedding in a page script
func (f Figure) JSON() (template.JS, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// Empty reports whether the figure has no traces
func (f Figure) Empty() bool {
	return len(f.Data) == 0
}

func emptyFigure(title string) Figure {
	return Figure{
		Data:   []Trace{},
		Layout: Layout{Title: title, Height: chartHeight},
	}
}
