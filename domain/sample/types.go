package sample

import (
	"math"

	"gopetro/domain/core"
)

// Variable names one of the four measured properties of a sample
type Variable string

const (
	VariableCV  Variable = "CV"  // coefficient of variation
	VariableHI  Variable = "HI"  // heterogeneity index
	VariableRQI Variable = "RQI" // reservoir quality index
	VariableFZI Variable = "FZI" // flow zone indicator
)

// Variables returns the fixed, ordered set of selectable measurement variables.
// The returned slice is a fresh copy.
func Variables() []Variable {
	return []Variable{VariableCV, VariableHI, VariableRQI, VariableFZI}
}

// ParseVariable matches name exactly against the known variable set
func ParseVariable(name string) (Variable, bool) {
	switch Variable(name) {
	case VariableCV, VariableHI, VariableRQI, VariableFZI:
		return Variable(name), true
	}
	return "", false
}

func (v Variable) String() string { return string(v) }

// Category is the qualitative label assigned by the categorizer
type Category string

const (
	CategorySuitable          Category = "Suitable"
	CategoryMostlyHomogeneous Category = "MostlyHomogeneous"
	CategoryHeterogeneous     Category = "Heterogeneous"
)

// Categories returns every category label in rule order
func Categories() []Category {
	return []Category{CategorySuitable, CategoryMostlyHomogeneous, CategoryHeterogeneous}
}

func (c Category) String() string { return string(c) }

// Measurements holds the four numeric properties of a sample
type Measurements struct {
	CV  float64 `json:"CV" db:"cv"`
	HI  float64 `json:"HI" db:"hi"`
	RQI float64 `json:"RQI" db:"rqi"`
	FZI float64 `json:"FZI" db:"fzi"`
}

// Value returns the measurement for v. Unknown variables yield NaN.
func (m Measurements) Value(v Variable) float64 {
	switch v {
	case VariableCV:
		return m.CV
	case VariableHI:
		return m.HI
	case VariableRQI:
		return m.RQI
	case VariableFZI:
		return m.FZI
	}
	return math.NaN()
}

// NonFinite lists the variables holding NaN or an infinity, in variable order
func (m Measurements) NonFinite() []string {
	var bad []string
	for _, v := range Variables() {
		x := m.Value(v)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			bad = append(bad, v.String())
		}
	}
	return bad
}

// Sample is a single measured specimen as delivered by a sample source
type Sample struct {
	ID core.SampleID `json:"id"`
	Measurements
}

// CategorizedSample is a Sample with its derived category
type CategorizedSample struct {
	Sample
	Category Category `json:"category"`
}

// Exclusion records a sample that could not enter a dataset
type Exclusion struct {
	SampleID core.SampleID `json:"sample_id"`
	Reason   string        `json:"reason"`
	Err      error         `json:"-"`
}
