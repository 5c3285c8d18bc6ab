package view

import (
	"fmt"
	"strings"

	"gopetro/domain/core"
	"gopetro/domain/sample"
)

// Axis identifies one of the two selector controls
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// ParseAxis accepts "x" or "y" in any case
func ParseAxis(s string) (Axis, error) {
	switch Axis(strings.ToLower(strings.TrimSpace(s))) {
	case AxisX:
		return AxisX, nil
	case AxisY:
		return AxisY, nil
	}
	return "", core.NewUnknownAxisError(s)
}

// AxisSelection is the pair of variables plotted on the x and y axes
type AxisSelection struct {
	X sample.Variable `json:"x"`
	Y sample.Variable `json:"y"`
}

// DefaultSelection is the selection every view starts from
func DefaultSelection() AxisSelection {
	return AxisSelection{X: sample.VariableCV, Y: sample.VariableHI}
}

// Validate reports core.ErrInvalidAxis when either slot is outside the known set
func (s AxisSelection) Validate() error {
	if _, ok := sample.ParseVariable(string(s.X)); !ok {
		return core.NewInvalidAxisError(string(AxisX), string(s.X))
	}
	if _, ok := sample.ParseVariable(string(s.Y)); !ok {
		return core.NewInvalidAxisError(string(AxisY), string(s.Y))
	}
	return nil
}

// With returns a copy with the given axis set to v
func (s AxisSelection) With(axis Axis, v sample.Variable) AxisSelection {
	if axis == AxisX {
		s.X = v
	} else {
		s.Y = v
	}
	return s
}

// Title is the plot title for this selection
func (s AxisSelection) Title() string {
	return fmt.Sprintf("Scatter Plot of %s vs %s", s.X, s.Y)
}

// Key is a stable cache key
func (s AxisSelection) Key() string {
	return string(s.X) + "/" + string(s.Y)
}

// Point is one plotted sample. SampleID is the hover metadata.
type Point struct {
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Category sample.Category `json:"category"`
	SampleID core.SampleID   `json:"sample_id"`
}

// RenderDescription is the renderer-agnostic description of a scatter plot
type RenderDescription struct {
	Title          string              `json:"title"`
	XAxis          sample.Variable     `json:"x_axis"`
	YAxis          sample.Variable     `json:"y_axis"`
	DatasetVersion core.DatasetVersion `json:"dataset_version"`
	Points         []Point             `json:"points"`
}

// Selection returns the axes this description was rendered for
func (r RenderDescription) Selection() AxisSelection {
	return AxisSelection{X: r.XAxis, Y: r.YAxis}
}

// SelectionChanged is the single event type accepted by a view controller.
// When Selection is non-nil both axes are replaced, otherwise Axis and Variable
// name one slot.
type SelectionChanged struct {
	Axis      Axis
	Variable  string
	Selection *AxisSelection
}

// State is the controller's lifecycle state
type State int32

const (
	StateIdle State = iota
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	}
	return "unknown"
}
