package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &rows[i]))
	}
	path := filepath.Join(t.TempDir(), "samples.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSamplesFromWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"Sample_ID", "cv", "Hi", "RQI", "fzi", "Depth"},
		{"1", 0.1, 0.3, 15, 3.5, 2100},
		{"2", 0.5, 0.7, 12, 2.5, 2110},
	})

	src := NewSampleSource(DefaultExcelConfig(path), nil)
	got, err := src.LoadSamples(t.Context())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, core.SampleID("1"), got[0].ID)
	assert.Equal(t, sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}, got[0].Measurements)
	assert.Equal(t, sample.Measurements{CV: 0.5, HI: 0.7, RQI: 12, FZI: 2.5}, got[1].Measurements)
	assert.Equal(t, "file:"+path, src.Describe())
}

func TestLoadSamplesUsesConfiguredSheet(t *testing.T) {
	path := writeWorkbook(t, "Cores", [][]interface{}{
		{"id", "CV", "HI", "RQI", "FZI"},
		{"A", 1.2, 1.5, 8, 1.0},
	})
	cfg := DefaultExcelConfig(path)
	cfg.Sheet = "Cores"

	got, err := NewSampleSource(cfg, nil).LoadSamples(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.2, got[0].CV)
}

func TestLoadSamplesFromCSV(t *testing.T) {
	path := writeCSV(t, "id,CV,HI,RQI,FZI\n1,0.1,0.3,15,3.5\n2,, 0.7,abc,2.5\n\n")

	got, err := NewSampleSource(DefaultExcelConfig(path), nil).LoadSamples(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2, "blank line skipped")

	assert.True(t, math.IsNaN(got[1].CV), "blank cell")
	assert.Equal(t, 0.7, got[1].HI)
	assert.True(t, math.IsNaN(got[1].RQI), "unparseable cell")
	assert.Equal(t, []string{"CV", "RQI"}, got[1].NonFinite())
}

func TestLoadSamplesMissingColumn(t *testing.T) {
	path := writeCSV(t, "id,CV,HI,RQI\n1,0.1,0.3,15\n")

	_, err := NewSampleSource(DefaultExcelConfig(path), nil).LoadSamples(t.Context())
	require.Error(t, err)
	assert.True(t, core.IsUnavailableError(err))
	assert.Contains(t, err.Error(), "FZI")
}

func TestLoadSamplesMissingFile(t *testing.T) {
	_, err := NewSampleSource(DefaultExcelConfig(filepath.Join(t.TempDir(), "none.csv")), nil).LoadSamples(t.Context())
	assert.True(t, core.IsUnavailableError(err))
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	ds, err := dataset.Build("test", []sample.Sample{
		{ID: "1", Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}},
		{ID: "2", Measurements: sample.Measurements{CV: 1.2, HI: 1.5, RQI: 8, FZI: 1.0}},
		{ID: "bad", Measurements: sample.Measurements{CV: math.NaN(), HI: 1, RQI: 1, FZI: 1}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, WriteWorkbook(path, ds))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SamplesSheet, SummarySheet, ExcludedSheet}, f.GetSheetList())

	category, err := f.GetCellValue(SamplesSheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, string(sample.CategorySuitable), category)

	excludedID, err := f.GetCellValue(ExcludedSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "bad", excludedID)

	cfg := DefaultExcelConfig(path)
	cfg.Sheet = SamplesSheet
	back, err := NewSampleSource(cfg, nil).LoadSamples(t.Context())
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, ds.At(0).Sample, back[0])
	assert.Equal(t, ds.At(1).Sample, back[1])
}
