package services

import (
	"fmt"
	"math"
	"strings"

	"gopetro/domain/sample"
	"gopetro/domain/view"
)

const labelWidth = 9

// Glyphs used for each category; overlapping points of different categories
// are drawn as Collision
var Glyphs = map[sample.Category]rune{
	sample.CategorySuitable:          'o',
	sample.CategoryMostlyHomogeneous: '+',
	sample.CategoryHeterogeneous:     'x',
}

const Collision = '#'

// RenderService draws render descriptions as text for terminals
type RenderService struct {
	width  int
	height int
}

// NewRenderService creates a renderer with a plot area of width x height cells
func NewRenderService(width, height int) *RenderService {
	if width < 8 {
		width = 8
	}
	if height < 4 {
		height = 4
	}
	return &RenderService{width: width, height: height}
}

type extent struct{ min, max float64 }

// scale maps v into [0, cells-1]. Halving first keeps the span finite for
// values near the float64 limits.
func (e extent) scale(v float64, cells int) int {
	ratio := (v/2 - e.min/2) / (e.max/2 - e.min/2)
	if math.IsNaN(ratio) {
		return 0
	}
	i := int(math.Round(ratio * float64(cells-1)))
	return max(0, min(i, cells-1))
}

func extentOf(values []float64) extent {
	e := extent{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range values {
		e.min = math.Min(e.min, v)
		e.max = math.Max(e.max, v)
	}
	if e.max == e.min {
		e.min -= 0.5
		e.max += 0.5
	}
	return e
}

// Grid places every point on a height x width grid, row 0 at the top
func (s *RenderService) Grid(rd view.RenderDescription) [][]rune {
	grid := make([][]rune, s.height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", s.width))
	}
	if len(rd.Points) == 0 {
		return grid
	}

	xs := make([]float64, len(rd.Points))
	ys := make([]float64, len(rd.Points))
	for i, p := range rd.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	ex, ey := extentOf(xs), extentOf(ys)

	for _, p := range rd.Points {
		col := ex.scale(p.X, s.width)
		row := s.height - 1 - ey.scale(p.Y, s.height)
		glyph := Glyphs[p.Category]
		switch grid[row][col] {
		case ' ', glyph:
			grid[row][col] = glyph
		default:
			grid[row][col] = Collision
		}
	}
	return grid
}

// Scatter renders the title, the plot with axis labels and a legend
func (s *RenderService) Scatter(rd view.RenderDescription) string {
	var b strings.Builder
	b.WriteString(rd.Title)
	b.WriteString("\n\n")

	if len(rd.Points) == 0 {
		b.WriteString("(no samples)\n")
		return b.String()
	}

	xs := make([]float64, len(rd.Points))
	ys := make([]float64, len(rd.Points))
	counts := make(map[sample.Category]int, 3)
	for i, p := range rd.Points {
		xs[i], ys[i] = p.X, p.Y
		counts[p.Category]++
	}
	ex, ey := extentOf(xs), extentOf(ys)

	blank := strings.Repeat(" ", labelWidth)
	for r, row := range s.Grid(rd) {
		label := blank
		switch r {
		case 0:
			label = fmt.Sprintf("%*.3f", labelWidth, ey.max)
		case s.height - 1:
			label = fmt.Sprintf("%*.3f", labelWidth, ey.min)
		}
		fmt.Fprintf(&b, "%s |%s\n", label, string(row))
	}
	fmt.Fprintf(&b, "%s +%s\n", blank, strings.Repeat("-", s.width))

	left, right := fmt.Sprintf("%.3f", ex.min), fmt.Sprintf("%.3f", ex.max)
	gap := s.width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(&b, "%s  %s%s%s\n", blank, left, strings.Repeat(" ", gap), right)
	fmt.Fprintf(&b, "x: %s   y: %s\n", rd.XAxis, rd.YAxis)

	legend := make([]string, 0, 3)
	for _, c := range sample.Categories() {
		legend = append(legend, fmt.Sprintf("%c %s (%d)", Glyphs[c], c, counts[c]))
	}
	fmt.Fprintf(&b, "%s   %c overlap\n", strings.Join(legend, "   "), Collision)
	return b.String()
}
