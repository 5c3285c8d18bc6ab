// Package categorizer maps a sample's measurements to a category label using an
// ordered decision list. The first rule whose predicate holds wins; the rules
// overlap, so their order is part of the result.
package categorizer

import (
	"gopetro/domain/core"
	"gopetro/domain/sample"
)

// Rock-quality thresholds. These are fixed properties of the heuristic.
const (
	suitableMaxCV  = 0.3
	suitableMaxHI  = 0.5
	suitableMinRQI = 10.0
	suitableMinFZI = 2.0

	homogeneousMaxCV  = 0.5
	homogeneousMaxHI  = 0.7
	homogeneousMinRQI = 8.0
	homogeneousMinFZI = 1.5
)

// Rule is one entry of the decision list
type Rule struct {
	Name        string
	Description string
	Category    sample.Category
	Match       func(m sample.Measurements) bool
}

var rules = []Rule{
	{
		Name:        "suitable",
		Description: "CV < 0.3 and HI < 0.5 and RQI > 10 and FZI > 2.0",
		Category:    sample.CategorySuitable,
		Match: func(m sample.Measurements) bool {
			return m.CV < suitableMaxCV && m.HI < suitableMaxHI &&
				m.RQI > suitableMinRQI && m.FZI > suitableMinFZI
		},
	},
	{
		Name:        "mostly-homogeneous",
		Description: "(CV < 0.5 and HI < 0.7) or (RQI > 8 and FZI > 1.5)",
		Category:    sample.CategoryMostlyHomogeneous,
		Match: func(m sample.Measurements) bool {
			return (m.CV < homogeneousMaxCV && m.HI < homogeneousMaxHI) ||
				(m.RQI > homogeneousMinRQI && m.FZI > homogeneousMinFZI)
		},
	},
	{
		Name:        "heterogeneous",
		Description: "otherwise",
		Category:    sample.CategoryHeterogeneous,
		Match:       func(sample.Measurements) bool { return true },
	},
}

// Rules returns the decision list in evaluation order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Match describes which rule produced a category
type Match struct {
	Category  sample.Category `json:"category"`
	Rule      string          `json:"rule"`
	RuleIndex int             `json:"rule_index"`
	Condition string          `json:"condition"`
}

// Categorize returns the category for m. Non-finite measurements are rejected
// with core.ErrInvalidMeasurement.
func Categorize(m sample.Measurements) (sample.Category, error) {
	match, err := Explain(m)
	if err != nil {
		return "", err
	}
	return match.Category, nil
}

// Explain is Categorize plus the rule that fired
func Explain(m sample.Measurements) (Match, error) {
	if bad := m.NonFinite(); len(bad) > 0 {
		return Match{}, core.NewInvalidMeasurementError(bad...)
	}
	for i, r := range rules {
		if r.Match(m) {
			return Match{Category: r.Category, Rule: r.Name, RuleIndex: i, Condition: r.Description}, nil
		}
	}
	// unreachable: the last rule always matches
	return Match{}, core.NewInvalidMeasurementError()
}

// CategorizeSample attaches a category to s
func CategorizeSample(s sample.Sample) (sample.CategorizedSample, error) {
	c, err := Categorize(s.Measurements)
	if err != nil {
		return sample.CategorizedSample{}, err
	}
	return sample.CategorizedSample{Sample: s, Category: c}, nil
}
