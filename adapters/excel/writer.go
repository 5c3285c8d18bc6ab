package excel

import (
	"fmt"

	"gopetro/domain/sample"
	"gopetro/internal/dataset"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported workbook
const (
	SamplesSheet  = "Samples"
	SummarySheet  = "Summary"
	ExcludedSheet = "Excluded"
)

// WriteWorkbook exports ds to an xlsx file: every categorized sample, the
// per-category counts and the excluded rows with their reasons
func WriteWorkbook(path string, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SamplesSheet); err != nil {
		return fmt.Errorf("failed to name samples sheet: %w", err)
	}

	header := []interface{}{"id"}
	for _, v := range sample.Variables() {
		header = append(header, string(v))
	}
	header = append(header, "category")
	if err := f.SetSheetRow(SamplesSheet, "A1", &header); err != nil {
		return err
	}
	for i := 0; i < ds.Len(); i++ {
		s := ds.At(i)
		row := []interface{}{s.ID.String(), s.CV, s.HI, s.RQI, s.FZI, string(s.Category)}
		if err := f.SetSheetRow(SamplesSheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	counts := ds.CategoryCounts()
	summary := [][]interface{}{
		{"category", "count"},
	}
	for _, c := range sample.Categories() {
		summary = append(summary, []interface{}{string(c), counts[c]})
	}
	summary = append(summary,
		[]interface{}{"total", ds.Len()},
		[]interface{}{"version", ds.Version().String()},
		[]interface{}{"source", ds.Source()},
	)
	for i := range summary {
		if err := f.SetSheetRow(SummarySheet, cell(1, i+1), &summary[i]); err != nil {
			return err
		}
	}

	if excluded := ds.Excluded(); len(excluded) > 0 {
		if _, err := f.NewSheet(ExcludedSheet); err != nil {
			return err
		}
		head := []interface{}{"id", "reason"}
		if err := f.SetSheetRow(ExcludedSheet, "A1", &head); err != nil {
			return err
		}
		for i, ex := range excluded {
			row := []interface{}{ex.SampleID.String(), ex.Reason}
			if err := f.SetSheetRow(ExcludedSheet, cell(1, i+2), &row); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
