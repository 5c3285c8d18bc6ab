package testkit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gopetro/domain/sample"
	"gopetro/internal"
	"gopetro/internal/dataset"

	"github.com/xuri/excelize/v2"
)

// TestKit provides fixtures built on the synthetic generator
type TestKit struct {
	config CoreGeneratorConfig
	logger *internal.Logger
}

// NewTestKit creates a kit with the default generator settings
func NewTestKit() *TestKit {
	return NewTestKitWithConfig(DefaultCoreConfig())
}

// NewTestKitWithConfig creates a kit over config
func NewTestKitWithConfig(config CoreGeneratorConfig) *TestKit {
	return &TestKit{config: config, logger: internal.NewNopLogger()}
}

// Config returns the generator settings
func (k *TestKit) Config() CoreGeneratorConfig {
	return k.config
}

// Source returns a sample source over the kit's generator
func (k *TestKit) Source() *SyntheticSource {
	return NewSyntheticSource(k.config)
}

// Samples returns the generated samples
func (k *TestKit) Samples() []sample.Sample {
	return NewCoreDataGenerator(k.config).Generate()
}

// Dataset builds a dataset from the generated samples
func (k *TestKit) Dataset() (*dataset.Dataset, error) {
	return dataset.Build(k.Source().Describe(), k.Samples())
}

// Store returns a store that has completed its first refresh
func (k *TestKit) Store(ctx context.Context) (*dataset.Store, error) {
	store := dataset.NewStore(k.Source(), k.logger)
	if _, err := store.Refresh(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func header() []string {
	h := []string{"id"}
	for _, v := range sample.Variables() {
		h = append(h, string(v))
	}
	return h
}

// formatValue writes NaN as an empty cell, the way a missing reading looks in a sheet
func formatValue(v float64) string {
	if v != v {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes the generated samples as a CSV file with an id column
func (k *TestKit) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header()); err != nil {
		return err
	}
	for _, s := range k.Samples() {
		if err := w.Write([]string{
			s.ID.String(), formatValue(s.CV), formatValue(s.HI), formatValue(s.RQI), formatValue(s.FZI),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteWorkbook writes the generated samples to the first sheet of an xlsx file
func (k *TestKit) WriteWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	head := make([]interface{}, 0, 5)
	for _, h := range header() {
		head = append(head, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, s := range k.Samples() {
		row := []interface{}{s.ID.String()}
		for _, v := range sample.Variables() {
			if x := s.Value(v); x == x {
				row = append(row, x)
			} else {
				row = append(row, nil)
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
