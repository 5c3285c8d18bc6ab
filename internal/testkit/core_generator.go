package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gopetro/domain/core"
	"gopetro/domain/sample"
)

// CoreGeneratorConfig configures the synthetic core-sample generator
type CoreGeneratorConfig struct {
	Count int   `json:"count"`
	Seed  int64 `json:"seed"`
	// Mix weights the three rock regimes; they need not sum to one
	SuitableWeight      float64 `json:"suitable_weight"`
	HomogeneousWeight   float64 `json:"homogeneous_weight"`
	HeterogeneousWeight float64 `json:"heterogeneous_weight"`
	// InvalidRate is the fraction of samples given a missing (NaN) measurement
	InvalidRate float64 `json:"invalid_rate"`
	IDPrefix    string  `json:"id_prefix"`
}

// DefaultCoreConfig returns defaults for demo data
func DefaultCoreConfig() CoreGeneratorConfig {
	return CoreGeneratorConfig{
		Count:               200,
		Seed:                42,
		SuitableWeight:      0.35,
		HomogeneousWeight:   0.40,
		HeterogeneousWeight: 0.25,
		IDPrefix:            "S-",
	}
}

// LabeledSample is a generated sample plus the regime it was drawn from
type LabeledSample struct {
	sample.Sample
	Regime sample.Category
	// Valid is false when a measurement was blanked out
	Valid bool
}

type valueRange struct{ lo, hi float64 }

type regime struct {
	category         sample.Category
	cv, hi, rqi, fzi valueRange
}

// Each regime's ranges sit strictly inside the decision list's thresholds so
// that a valid sample always categorizes as its regime.
var regimes = []regime{
	{
		category: sample.CategorySuitable,
		cv:       valueRange{0.05, 0.28},
		hi:       valueRange{0.10, 0.48},
		rqi:      valueRange{10.5, 20},
		fzi:      valueRange{2.1, 5},
	},
	{
		category: sample.CategoryMostlyHomogeneous,
		cv:       valueRange{0.30, 0.49},
		hi:       valueRange{0.50, 0.69},
		rqi:      valueRange{5, 9.5},
		fzi:      valueRange{0.8, 2.0},
	},
	{
		category: sample.CategoryHeterogeneous,
		cv:       valueRange{0.55, 1.5},
		hi:       valueRange{0.75, 2.0},
		rqi:      valueRange{1, 7.5},
		fzi:      valueRange{0.2, 1.4},
	},
}

// CoreDataGenerator generates seeded core-sample measurements
type CoreDataGenerator struct {
	config CoreGeneratorConfig
	rng    *rand.Rand
}

// NewCoreDataGenerator creates a generator; equal configs give equal output
func NewCoreDataGenerator(config CoreGeneratorConfig) *CoreDataGenerator {
	if config.SuitableWeight+config.HomogeneousWeight+config.HeterogeneousWeight <= 0 {
		d := DefaultCoreConfig()
		config.SuitableWeight, config.HomogeneousWeight, config.HeterogeneousWeight =
			d.SuitableWeight, d.HomogeneousWeight, d.HeterogeneousWeight
	}
	return &CoreDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateLabeled draws config.Count samples with their source regime
func (g *CoreDataGenerator) GenerateLabeled() []LabeledSample {
	out := make([]LabeledSample, 0, g.config.Count)
	for i := 0; i < g.config.Count; i++ {
		r := g.pickRegime()
		s := LabeledSample{
			Sample: sample.Sample{
				ID: core.SampleID(fmt.Sprintf("%s%04d", g.config.IDPrefix, i+1)),
				Measurements: sample.Measurements{
					CV:  g.draw(r.cv),
					HI:  g.draw(r.hi),
					RQI: g.draw(r.rqi),
					FZI: g.draw(r.fzi),
				},
			},
			Regime: r.category,
			Valid:  true,
		}
		if g.config.InvalidRate > 0 && g.rng.Float64() < g.config.InvalidRate {
			g.blankOne(&s.Measurements)
			s.Valid = false
		}
		out = append(out, s)
	}
	return out
}

// Generate draws config.Count samples
func (g *CoreDataGenerator) Generate() []sample.Sample {
	labeled := g.GenerateLabeled()
	out := make([]sample.Sample, len(labeled))
	for i, l := range labeled {
		out[i] = l.Sample
	}
	return out
}

func (g *CoreDataGenerator) pickRegime() regime {
	weights := []float64{g.config.SuitableWeight, g.config.HomogeneousWeight, g.config.HeterogeneousWeight}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := g.rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return regimes[i]
		}
		x -= w
	}
	return regimes[len(regimes)-1]
}

// draw returns a value in [r.lo, r.hi] rounded to three decimals
func (g *CoreDataGenerator) draw(r valueRange) float64 {
	v := r.lo + g.rng.Float64()*(r.hi-r.lo)
	return math.Round(v*1000) / 1000
}

func (g *CoreDataGenerator) blankOne(m *sample.Measurements) {
	switch g.rng.Intn(4) {
	case 0:
		m.CV = math.NaN()
	case 1:
		m.HI = math.NaN()
	case 2:
		m.RQI = math.NaN()
	default:
		m.FZI = math.NaN()
	}
}

// SyntheticSource serves generated samples as a sample source. Every load
// returns the same samples for the same config.
type SyntheticSource struct {
	config CoreGeneratorConfig
}

// NewSyntheticSource creates a source over config
func NewSyntheticSource(config CoreGeneratorConfig) *SyntheticSource {
	return &SyntheticSource{config: config}
}

// LoadSamples generates the samples
func (s *SyntheticSource) LoadSamples(ctx context.Context) ([]sample.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewCoreDataGenerator(s.config).Generate(), nil
}

// Describe names the generator settings
func (s *SyntheticSource) Describe() string {
	return fmt.Sprintf("synthetic:n=%d,seed=%d", s.config.Count, s.config.Seed)
}
