package excel

import (
	"context"
	"math"
	"strconv"
	"strings"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal"
	"gopetro/internal/errors"
)

// SampleSource loads samples from an xlsx or csv file on every call, so a
// refresh sees edits made since the last load
type SampleSource struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewSampleSource creates a file-backed sample source
func NewSampleSource(config ExcelConfig, logger *internal.Logger) *SampleSource {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if len(config.IDColumns) == 0 {
		config.IDColumns = DefaultExcelConfig(config.FilePath).IDColumns
	}
	return &SampleSource{config: config, logger: logger}
}

// Describe names the file being read
func (s *SampleSource) Describe() string {
	return "file:" + s.config.FilePath
}

// Path returns the file path
func (s *SampleSource) Path() string {
	return s.config.FilePath
}

// LoadSamples reads the file and maps each row to a Sample. Blank or
// unparseable measurement cells become NaN; the dataset build excludes them.
func (s *SampleSource) LoadSamples(ctx context.Context) ([]sample.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := NewDataReader(s.config.FilePath, s.config.Sheet, s.logger).ReadData()
	if err != nil {
		return nil, errors.DatasetUnavailable("cannot read "+s.config.FilePath, err)
	}

	idCol, ok := s.idColumn(data)
	if !ok {
		return nil, errors.DatasetUnavailable("missing id column in "+s.config.FilePath, nil)
	}

	cols := make(map[sample.Variable]string, len(sample.Variables()))
	var missing []string
	for _, v := range sample.Variables() {
		h, ok := data.FindHeader(string(v))
		if !ok {
			missing = append(missing, string(v))
			continue
		}
		cols[v] = h
	}
	if len(missing) > 0 {
		return nil, errors.DatasetUnavailable("missing columns "+strings.Join(missing, ", ")+" in "+s.config.FilePath, nil)
	}

	out := make([]sample.Sample, 0, len(data.Rows))
	for _, row := range data.Rows {
		out = append(out, sample.Sample{
			ID: core.SampleID(strings.TrimSpace(row[idCol])),
			Measurements: sample.Measurements{
				CV:  parseCell(row[cols[sample.VariableCV]]),
				HI:  parseCell(row[cols[sample.VariableHI]]),
				RQI: parseCell(row[cols[sample.VariableRQI]]),
				FZI: parseCell(row[cols[sample.VariableFZI]]),
			},
		})
	}
	s.logger.Debug("Loaded %d rows from %s", len(out), s.config.FilePath)
	return out, nil
}

func (s *SampleSource) idColumn(data *ExcelData) (string, bool) {
	for _, name := range s.config.IDColumns {
		if h, ok := data.FindHeader(name); ok {
			return h, true
		}
	}
	return "", false
}

// parseCell converts cell text to a float; anything unusable is NaN
func parseCell(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
