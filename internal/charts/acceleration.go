package charts

import (
	"github.com/jengzang/accel-dashboard-go/internal/analysis"
	"github.com/jengzang/accel-dashboard-go/internal/models"
)

// Trace colors
const (
	colorX         = "rgb(31, 119, 180)"
	colorY         = "rgb(44, 160, 44)"
	colorZ         = "rgb(255, 127, 14)"
	colorMagnitude = "rgb(214, 39, 40)"
)

// XYZChart plots the three acceleration components against sample index
func XYZChart(samples []models.NormalizedSample) Figure {
	if len(samples) == 0 {
		return emptyFigure("No acceleration data available")
	}

	index := indices(samples)
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	zs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i], ys[i], zs[i] = s.X, s.Y, s.Z
	}

	return Figure{
		Data: []Trace{
			lineTrace("X-axis", index, xs, Line{Color: colorX}),
			lineTrace("Y-axis", index, ys, Line{Color: colorY}),
			lineTrace("Z-axis", index, zs, Line{Color: colorZ}),
		},
		Layout: Layout{
			Title:  "Acceleration Components",
			Height: chartHeight,
			XAxis:  &Axis{Title: "Samples"},
			YAxis:  &Axis{Title: "Acceleration (g)"},
			Legend: &Legend{Orientation: "h", YAnchor: "bottom", Y: 1.02, XAnchor: "right", X: 1},
		},
	}
}

// MagnitudeChart plots magnitude against sample index with a reference line at rest
func MagnitudeChart(samples []models.NormalizedSample) Figure {
	if len(samples) == 0 {
		return emptyFigure("No magnitude data available")
	}

	index := indices(samples)
	magnitudes := make([]float64, len(samples))
	for i, s := range samples {
		magnitudes[i] = s.Magnitude
	}

	lo, hi := float64(index[0]), float64(index[0])
	for _, i := range index {
		lo = min(lo, float64(i))
		hi = max(hi, float64(i))
	}

	return Figure{
		Data: []Trace{
			lineTrace("Magnitude", index, magnitudes, Line{Color: colorMagnitude, Width: 2}),
		},
		Layout: Layout{
			Title:  "Movement Magnitude",
			Height: chartHeight,
			XAxis:  &Axis{Title: "Samples"},
			YAxis:  &Axis{Title: "Magnitude (g)"},
			Shapes: []Shape{{
				Type: "line",
				X0:   lo,
				Y0:   analysis.GravityOffset,
				X1:   hi,
				Y1:   analysis.GravityOffset,
				Line: Line{Color: "rgba(0,0,0,0.3)", Width: 1, Dash: "dash"},
			}},
			Annotations: []Annotation{{
				X:    lo + (hi-lo)*0.02,
				Y:    analysis.GravityOffset + 0.05,
				XRef: "x",
				YRef: "y",
				Text: "Earth's gravity (1g)",
				Font: Font{Size: 10, Color: "rgba(0,0,0,0.5)"},
			}},
		},
	}
}

func indices(samples []models.NormalizedSample) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = s.SequenceIndex
	}
	return out
}

func lineTrace(name string, x []int, y []float64, line Line) Trace {
	return Trace{Type: "scatter", Mode: "lines", Name: name, X: x, Y: y, Line: line}
}
