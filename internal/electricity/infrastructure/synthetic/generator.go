// Package synthetic generates deterministic hourly readings for seeding a
// database or backing the in-memory store.
package synthetic

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

// Options controls generation.
type Options struct {
	Start time.Time
	Days  int
	Seed  int64
	// MissingRatio is the share of hours left out, in [0, 1).
	MissingRatio float64
	// NullRatio is the share of values stored as null, in [0, 1).
	NullRatio float64
}

// Generate returns readings ordered by start time. Prices dip below zero
// around midday on sunny days so negative-price streaks of varying length
// appear in the data.
func Generate(opts Options) ([]electricity.Reading, error) {
	if opts.Days <= 0 {
		return nil, errors.New("synthetic: days must be > 0")
	}
	if opts.MissingRatio < 0 || opts.MissingRatio >= 1 || opts.NullRatio < 0 || opts.NullRatio >= 1 {
		return nil, errors.New("synthetic: ratios must be in [0, 1)")
	}
	start := opts.Start.UTC().Truncate(24 * time.Hour)
	rng := rand.New(rand.NewSource(opts.Seed))

	readings := make([]electricity.Reading, 0, opts.Days*24)
	for d := 0; d < opts.Days; d++ {
		day := start.AddDate(0, 0, d)
		sunshine := 0.3 + 0.7*rng.Float64()
		for h := 0; h < 24; h++ {
			if rng.Float64() < opts.MissingRatio {
				continue
			}
			solar := math.Max(0, math.Sin(math.Pi*float64(h-6)/12)) * sunshine
			production := 4000 + 9000*solar + 500*rng.Float64()
			consumption := 8000 + 2500*math.Sin(math.Pi*float64(h-4)/12) + 800*rng.Float64()
			price := 45 - 70*solar*sunshine + 10*rng.NormFloat64()

			readings = append(readings, electricity.Reading{
				Date:              day,
				StartTime:         day.Add(time.Duration(h) * time.Hour),
				ProductionAmount:  nullable(rng, opts.NullRatio, decimal.NewFromFloat(production).Round(5)),
				ConsumptionAmount: nullable(rng, opts.NullRatio, decimal.NewFromFloat(consumption).Round(3)),
				HourlyPrice:       nullable(rng, opts.NullRatio, decimal.NewFromFloat(price).Round(3)),
			})
		}
	}
	return readings, nil
}

func nullable(rng *rand.Rand, ratio float64, value decimal.Decimal) decimal.NullDecimal {
	if ratio > 0 && rng.Float64() < ratio {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(value)
}
