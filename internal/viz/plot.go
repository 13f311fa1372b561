// Package viz renders flowpipe bounds as terminal charts.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotHeight = 10
	plotWidth  = 80
)

// PlotBounds charts the lower and upper bound of one coordinate over the
// run: two series, the tube between them is the reachable band.
func PlotBounds(lo, hi [][]float64, coord int, caption string) (string, error) {
	if len(lo) == 0 || len(lo) != len(hi) {
		return "", fmt.Errorf("viz: empty or mismatched bound series")
	}
	if coord < 0 || coord >= len(lo[0]) {
		return "", fmt.Errorf("viz: coordinate %d out of range [0, %d)", coord, len(lo[0]))
	}

	series := make([][]float64, 2)
	series[0] = make([]float64, len(lo))
	series[1] = make([]float64, len(hi))
	for k := range lo {
		series[0][k] = lo[k][coord]
		series[1][k] = hi[k][coord]
	}

	graph := asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
	return graph, nil
}

// PlotWidth charts the total bound width per step, the quickest way to
// spot a blowing-up run.
func PlotWidth(lo, hi [][]float64, caption string) (string, error) {
	if len(lo) == 0 || len(lo) != len(hi) {
		return "", fmt.Errorf("viz: empty or mismatched bound series")
	}

	widths := make([]float64, len(lo))
	for k := range lo {
		for j := range lo[k] {
			widths[k] += hi[k][j] - lo[k][j]
		}
	}

	graph := asciigraph.Plot(widths,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
	return graph, nil
}

// PlotAll stacks a bound chart per coordinate.
func PlotAll(lo, hi [][]float64, name string) (string, error) {
	if len(lo) == 0 {
		return "", fmt.Errorf("viz: empty bound series")
	}
	var b strings.Builder
	for coord := range lo[0] {
		graph, err := PlotBounds(lo, hi, coord, fmt.Sprintf("%s x%d bounds", name, coord))
		if err != nil {
			return "", err
		}
		b.WriteString(graph)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
