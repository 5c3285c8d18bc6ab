package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"gopetro/domain/categorizer"
	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal/errors"
)

// Dataset is the ordered, read-only collection of categorized samples a view
// renders from. It is never mutated after Build returns.
type Dataset struct {
	samples  []sample.CategorizedSample
	index    map[core.SampleID]int
	excluded []sample.Exclusion
	version  core.DatasetVersion
	source   string
	builtAt  core.Timestamp
}

// Build categorizes raw in order. Samples with non-finite measurements, an
// empty id, or an id already seen are excluded and reported; the build fails
// with a dataset-unavailable error only when nothing usable remains.
func Build(source string, raw []sample.Sample) (*Dataset, error) {
	if len(raw) == 0 {
		return nil, errors.DatasetUnavailable(fmt.Sprintf("%s returned no samples", source), nil)
	}

	ds := &Dataset{
		samples: make([]sample.CategorizedSample, 0, len(raw)),
		index:   make(map[core.SampleID]int, len(raw)),
		source:  source,
		builtAt: core.Now(),
	}

	for i, s := range raw {
		if s.ID.String() == "" {
			ds.exclude(core.SampleID(fmt.Sprintf("#%d", i+1)), fmt.Errorf("%w at row %d", core.ErrMissingSampleID, i+1))
			continue
		}
		if _, seen := ds.index[s.ID]; seen {
			ds.exclude(s.ID, fmt.Errorf("%w: %s", core.ErrDuplicateSample, s.ID))
			continue
		}
		cs, err := categorizer.CategorizeSample(s)
		if err != nil {
			ds.exclude(s.ID, err)
			continue
		}
		ds.index[s.ID] = len(ds.samples)
		ds.samples = append(ds.samples, cs)
	}

	if len(ds.samples) == 0 {
		return nil, errors.DatasetUnavailable(
			fmt.Sprintf("all %d samples from %s were excluded", len(raw), source), nil)
	}

	ds.version = fingerprint(ds.samples, ds.excluded)
	return ds, nil
}

func (d *Dataset) exclude(id core.SampleID, err error) {
	d.excluded = append(d.excluded, sample.Exclusion{SampleID: id, Reason: err.Error(), Err: err})
}

// fingerprint hashes the categorized rows and the exclusions in order;
// identical content always yields the same version regardless of source or
// build time
func fingerprint(samples []sample.CategorizedSample, excluded []sample.Exclusion) core.DatasetVersion {
	var b strings.Builder
	for _, s := range samples {
		b.WriteString(s.ID.String())
		for _, v := range []float64{s.CV, s.HI, s.RQI, s.FZI} {
			b.WriteByte('|')
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte('|')
		b.WriteString(s.Category.String())
		b.WriteByte('\n')
	}
	for _, e := range excluded {
		b.WriteString("!")
		b.WriteString(e.SampleID.String())
		b.WriteByte('|')
		b.WriteString(e.Reason)
		b.WriteByte('\n')
	}
	return core.NewDatasetVersion([]byte(b.String()))
}

// Len returns the number of categorized samples
func (d *Dataset) Len() int { return len(d.samples) }

// At returns the i-th sample in dataset order
func (d *Dataset) At(i int) sample.CategorizedSample { return d.samples[i] }

// Samples returns a copy of the categorized samples in order
func (d *Dataset) Samples() []sample.CategorizedSample {
	out := make([]sample.CategorizedSample, len(d.samples))
	copy(out, d.samples)
	return out
}

// Get looks a sample up by id
func (d *Dataset) Get(id core.SampleID) (sample.CategorizedSample, error) {
	i, ok := d.index[id]
	if !ok {
		return sample.CategorizedSample{}, core.NewNotFoundError("sample", id.String())
	}
	return d.samples[i], nil
}

// Excluded returns the samples rejected during the build
func (d *Dataset) Excluded() []sample.Exclusion {
	out := make([]sample.Exclusion, len(d.excluded))
	copy(out, d.excluded)
	return out
}

// ExcludedIDs lists the ids of rejected samples in input order
func (d *Dataset) ExcludedIDs() []string {
	ids := make([]string, len(d.excluded))
	for i, e := range d.excluded {
		ids[i] = e.SampleID.String()
	}
	return ids
}

func (d *Dataset) Version() core.DatasetVersion { return d.version }
func (d *Dataset) Source() string               { return d.source }
func (d *Dataset) BuiltAt() core.Timestamp      { return d.builtAt }

// Column returns the values of v in dataset order
func (d *Dataset) Column(v sample.Variable) []float64 {
	out := make([]float64, len(d.samples))
	for i, s := range d.samples {
		out[i] = s.Value(v)
	}
	return out
}

// CategoryCounts counts samples per category, every category present
func (d *Dataset) CategoryCounts() map[sample.Category]int {
	counts := make(map[sample.Category]int, 3)
	for _, c := range sample.Categories() {
		counts[c] = 0
	}
	for _, s := range d.samples {
		counts[s.Category]++
	}
	return counts
}
