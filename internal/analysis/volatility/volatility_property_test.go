package volatility

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ivlens/internal/models"
)

// Property: for any series of positive closes, close-to-close realized
// volatility is non-negative and finite, and exactly zero when all closes
// are identical.

// closesGen generates a slice of positive close prices.
func closesGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(1.0, 5000.0)).Map(func(closes []float64) []float64 {
		if len(closes) < minLen {
			for len(closes) < minLen {
				closes = append(closes, 100.0)
			}
		}
		for i := range closes {
			if closes[i] <= 0 || math.IsNaN(closes[i]) || math.IsInf(closes[i], 0) {
				closes[i] = 100.0
			}
		}
		return closes
	})
}

func seriesFromCloses(closes []float64) Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{Date: base.AddDate(0, 0, i), Close: c}
	}
	series, err := Normalize(bars)
	if err != nil {
		return nil
	}
	return series
}

func TestProperty_RealizedVolatilityNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("close-to-close volatility is non-negative and finite", prop.ForAll(
		func(closes []float64) bool {
			series := seriesFromCloses(closes)
			if series == nil {
				return true
			}
			est, err := NewCloseToClose(0).Calculate(series)
			if err != nil {
				return true // insufficient data is acceptable
			}
			return est.Value >= 0 && !math.IsNaN(est.Value) && !math.IsInf(est.Value, 0)
		},
		closesGen(3, 120),
	))

	properties.Property("constant closes yield zero volatility", prop.ForAll(
		func(price float64, n int) bool {
			closes := make([]float64, n)
			for i := range closes {
				closes[i] = price
			}
			est, err := NewCloseToClose(0).Calculate(seriesFromCloses(closes))
			if err != nil {
				return false
			}
			return est.Value == 0
		},
		gen.Float64Range(1.0, 5000.0),
		gen.IntRange(3, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_RankWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("rank and percentile stay within [0, 100]", prop.ForAll(
		func(current float64, history []float64) bool {
			result, err := Rank(current, history)
			if err != nil {
				return true // undefined results are acceptable
			}
			return result.Rank >= 0 && result.Rank <= 100 &&
				result.Percentile >= 0 && result.Percentile <= 100
		},
		gen.Float64Range(0.1, 500.0),
		gen.SliceOf(gen.Float64Range(-50.0, 500.0)),
	))

	properties.Property("flat history ranks exactly fifty", prop.ForAll(
		func(current, level float64, n int) bool {
			history := make([]float64, n)
			for i := range history {
				history[i] = level
			}
			result, err := Rank(current, history)
			if err != nil {
				return false
			}
			return result.Rank == 50
		},
		gen.Float64Range(0.1, 500.0),
		gen.Float64Range(1.0, 500.0),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_ExpectedMoveSqrtScaling(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("doubling the horizon scales the move by sqrt(2)", prop.ForAll(
		func(iv float64, days int, spot float64) bool {
			single, err := Project(iv, days, spot)
			if err != nil {
				return true
			}
			double, err := Project(iv, 2*days, spot)
			if err != nil {
				return true
			}
			want := single.MovePercent * math.Sqrt2
			return math.Abs(double.MovePercent-want) < 1e-9*math.Max(1, want)
		},
		gen.Float64Range(1.0, 200.0),
		gen.IntRange(1, 180),
		gen.Float64Range(1.0, 10000.0),
	))

	properties.TestingRun(t)
}

func TestProperty_DistributionConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("bucket counts sum to samples, up+down <= samples, p100 == max", prop.ForAll(
		func(closes []float64, lookahead int) bool {
			series := seriesFromCloses(closes)
			if series == nil {
				return true
			}
			dist, err := Distribution(series, lookahead)
			if err != nil {
				return true
			}

			total := 0
			for _, b := range dist.Buckets {
				total += b.Count
			}
			if total != dist.Samples {
				return false
			}
			if dist.UpMoves+dist.DownMoves > dist.Samples {
				return false
			}
			if dist.MeanAbs < 0 || dist.Min < 0 || dist.Max < dist.Min {
				return false
			}
			// nearest-rank percentile at 100 is the max
			return dist.P99 <= dist.Max
		},
		closesGen(15, 150),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
