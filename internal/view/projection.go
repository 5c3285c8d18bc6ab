package view

import (
	"gopetro/domain/view"
	"gopetro/internal/dataset"
	"gopetro/internal/profiling"
)

// Project derives the scatter plot for sel from ds. It reads nothing but its
// arguments, so equal inputs give equal output.
func Project(ds *dataset.Dataset, sel view.AxisSelection) view.RenderDescription {
	points := make([]view.Point, ds.Len())
	for i := range points {
		s := ds.At(i)
		points[i] = view.Point{
			X:        s.Value(sel.X),
			Y:        s.Value(sel.Y),
			Category: s.Category,
			SampleID: s.ID,
		}
	}
	return view.RenderDescription{
		Title:          sel.Title(),
		XAxis:          sel.X,
		YAxis:          sel.Y,
		DatasetVersion: ds.Version(),
		Points:         points,
	}
}

// AxisStats fits a line through the plotted points
func AxisStats(rd view.RenderDescription) (profiling.Relationship, bool) {
	xs := make([]float64, len(rd.Points))
	ys := make([]float64, len(rd.Points))
	for i, p := range rd.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	return profiling.Relate(xs, ys)
}
