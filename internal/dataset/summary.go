package dataset

import (
	"fmt"
	"strings"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal/profiling"
)

// VariableSummary describes one measurement column overall and per category
type VariableSummary struct {
	Variable   sample.Variable                        `json:"variable"`
	Overall    profiling.Summary                      `json:"overall"`
	ByCategory map[sample.Category]*profiling.Summary `json:"by_category"`
}

// Summary is the dataset overview served by the API and the report page
type Summary struct {
	Version   core.DatasetVersion     `json:"version"`
	Source    string                  `json:"source"`
	BuiltAt   core.Timestamp          `json:"built_at"`
	Total     int                     `json:"total"`
	Counts    map[sample.Category]int `json:"counts"`
	Excluded  []sample.Exclusion      `json:"excluded"`
	Variables []VariableSummary       `json:"variables"`
}

// Summarize profiles every variable of ds. Categories without samples have a
// nil entry in ByCategory.
func Summarize(ds *Dataset) Summary {
	summary := Summary{
		Version:  ds.Version(),
		Source:   ds.Source(),
		BuiltAt:  ds.BuiltAt(),
		Total:    ds.Len(),
		Counts:   ds.CategoryCounts(),
		Excluded: ds.Excluded(),
	}

	for _, v := range sample.Variables() {
		vs := VariableSummary{
			Variable:   v,
			ByCategory: make(map[sample.Category]*profiling.Summary, 3),
		}
		vs.Overall, _ = profiling.Summarize(ds.Column(v))

		grouped := make(map[sample.Category][]float64, 3)
		for i := 0; i < ds.Len(); i++ {
			s := ds.At(i)
			grouped[s.Category] = append(grouped[s.Category], s.Value(v))
		}
		for _, c := range sample.Categories() {
			vs.ByCategory[c] = nil
			if values := grouped[c]; len(values) > 0 {
				if ps, err := profiling.Summarize(values); err == nil {
					vs.ByCategory[c] = &ps
				}
			}
		}
		summary.Variables = append(summary.Variables, vs)
	}
	return summary
}

// Markdown renders the summary as a markdown report
func (s Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sample dataset report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", s.Source)
	fmt.Fprintf(&b, "- **Version:** `%s`\n", s.Version.Short())
	fmt.Fprintf(&b, "- **Built:** %s\n", s.BuiltAt)
	fmt.Fprintf(&b, "- **Samples:** %d categorized, %d excluded\n\n", s.Total, len(s.Excluded))

	b.WriteString("## Categories\n\n| Category | Samples | Share |\n|---|---:|---:|\n")
	for _, c := range sample.Categories() {
		share := 0.0
		if s.Total > 0 {
			share = 100 * float64(s.Counts[c]) / float64(s.Total)
		}
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", c, s.Counts[c], share)
	}

	b.WriteString("\n## Measurements\n\n| Variable | Mean | Std dev | Min | Median | Max |\n|---|---:|---:|---:|---:|---:|\n")
	for _, v := range s.Variables {
		o := v.Overall
		fmt.Fprintf(&b, "| %s | %.3f | %.3f | %.3f | %.3f | %.3f |\n", v.Variable, o.Mean, o.StdDev, o.Min, o.Median, o.Max)
	}

	if len(s.Excluded) > 0 {
		b.WriteString("\n## Excluded samples\n\n")
		for _, e := range s.Excluded {
			fmt.Fprintf(&b, "- `%s`: %s\n", e.SampleID, e.Reason)
		}
	}
	return b.String()
}
