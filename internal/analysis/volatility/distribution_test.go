package volatility

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func sortedCopy(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	return out
}

// Scenario from the dashboard docs: ten closes, day-over-day moves.
func TestDistributionScenario(t *testing.T) {
	series := closeSeries(t, 100, 101, 99, 100, 102, 98, 101, 100, 103, 97)

	dist, err := Distribution(series, 1)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if dist.Samples != 9 {
		t.Fatalf("samples = %d, want 9", dist.Samples)
	}
	if math.Abs(dist.Max-5.83) > 0.01 {
		t.Errorf("max = %f, want ~5.83", dist.Max)
	}
	if math.Abs(dist.Median-2.0) > 0.001 {
		t.Errorf("median = %f, want 2.0", dist.Median)
	}

	wantBuckets := map[string]int{
		"0-2%":   5, // the exact 2.0% move belongs here
		"2-5%":   3,
		"5-10%":  1,
		"10-15%": 0,
		"15-20%": 0,
		"20%+":   0,
	}
	total := 0
	for _, b := range dist.Buckets {
		if b.Count != wantBuckets[b.Label] {
			t.Errorf("bucket %s = %d, want %d", b.Label, b.Count, wantBuckets[b.Label])
		}
		total += b.Count
	}
	if total != dist.Samples {
		t.Errorf("bucket counts sum to %d, want %d", total, dist.Samples)
	}

	if dist.UpMoves != 5 || dist.DownMoves != 4 {
		t.Errorf("up/down = %d/%d, want 5/4", dist.UpMoves, dist.DownMoves)
	}

	for _, th := range dist.Thresholds {
		want := 0
		if th.Threshold == 5 {
			want = 1 // only the 5.83% move
		}
		if th.Count != want {
			t.Errorf("threshold %.0f%%: count = %d, want %d", th.Threshold, th.Count, want)
		}
	}
}

func TestDistributionConstantSeries(t *testing.T) {
	series := closeSeries(t, constantCloses(30, 100)...)
	dist, err := Distribution(series, 5)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if dist.MeanAbs != 0 || dist.Median != 0 || dist.P75 != 0 || dist.P99 != 0 || dist.Max != 0 {
		t.Errorf("constant series must produce all-zero statistics: %+v", dist)
	}
	if dist.Buckets[0].Count != dist.Samples {
		t.Errorf("all moves must fall in the 0-2%% bucket, got %d of %d", dist.Buckets[0].Count, dist.Samples)
	}
	if dist.UpMoves != 0 || dist.DownMoves != 0 {
		t.Errorf("zero moves count as neither up nor down: %d/%d", dist.UpMoves, dist.DownMoves)
	}
}

func TestDistributionPercentileHundredIsMax(t *testing.T) {
	closes := make([]float64, 60)
	price := 100.0
	for i := range closes {
		if i%3 == 0 {
			price *= 1.04
		} else {
			price *= 0.99
		}
		closes[i] = price
	}
	series := closeSeries(t, closes...)
	dist, err := Distribution(series, 3)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	sorted := make([]float64, 0)
	for i := 3; i < len(series); i++ {
		from := series[i-3].Close
		m := math.Abs((series[i].Close - from) / from * 100)
		sorted = append(sorted, m)
	}
	if got := nearestRank(sortedCopy(sorted), 100); got != dist.Max {
		t.Errorf("percentile(100) = %f, want max %f", got, dist.Max)
	}
}

func TestDistributionInsufficientData(t *testing.T) {
	series := closeSeries(t, 100, 101, 99, 100, 102)
	if _, err := Distribution(series, 1); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	long := closeSeries(t, constantCloses(30, 100)...)
	if _, err := Distribution(long, 25); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for lookahead near series length, got %v", err)
	}
}

func TestDistributionInvalidLookahead(t *testing.T) {
	series := closeSeries(t, constantCloses(30, 100)...)
	if _, err := Distribution(series, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
