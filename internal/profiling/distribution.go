package profiling

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for one numeric column
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Summarize computes descriptive statistics. Input must be finite and non-empty.
func Summarize(data []float64) (Summary, error) {
	summary := Summary{Count: len(data)}
	if len(data) == 0 {
		return summary, fmt.Errorf("cannot summarize empty column")
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if summary.StdDev, err = stats.StandardDeviation(data); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}

	// Percentile rejects single-element input
	if len(data) == 1 {
		summary.Q25, summary.Q75 = data[0], data[0]
		return summary, nil
	}
	if summary.Q25, err = stats.Percentile(data, 25); err != nil {
		return summary, err
	}
	if summary.Q75, err = stats.Percentile(data, 75); err != nil {
		return summary, err
	}
	return summary, nil
}

// Relationship describes the linear association between two columns
type Relationship struct {
	N         int     `json:"n"`
	Pearson   float64 `json:"pearson"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// Relate fits y = Intercept + Slope*x by least squares. It reports false when
// the fit is undefined: fewer than two points, mismatched lengths, or a
// constant column.
func Relate(xs, ys []float64) (Relationship, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return Relationship{}, false
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return Relationship{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	rel := Relationship{
		N:         len(xs),
		Pearson:   stat.Correlation(xs, ys, nil),
		Slope:     beta,
		Intercept: alpha,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
	}
	if math.IsNaN(rel.Pearson) || math.IsNaN(rel.Slope) {
		return Relationship{}, false
	}
	return rel, true
}
