package volatility

import "sort"

// minDistributionSamples is the floor on overlapping move samples for a
// distribution to be reported.
const minDistributionSamples = 9

// bucketBounds partitions absolute moves by magnitude. Upper bounds are
// inclusive: an exact 2% move lands in the 0-2% bucket. The final bucket is
// unbounded.
var bucketBounds = []struct {
	label string
	upper float64
}{
	{"0-2%", 2},
	{"2-5%", 5},
	{"5-10%", 10},
	{"10-15%", 15},
	{"15-20%", 20},
	{"20%+", 0}, // unbounded
}

// moveThresholds are the exceedance levels reported in the frequency table.
var moveThresholds = []float64{5, 10, 15, 20}

// BucketCount is one histogram bucket of absolute move magnitudes.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ThresholdCount reports how often the absolute move reached a threshold.
type ThresholdCount struct {
	Threshold float64 `json:"threshold"` // percent
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"` // share of samples
}

// MoveDistribution is the empirical distribution of percentage moves over
// all overlapping windows of a fixed lookahead length.
type MoveDistribution struct {
	LookaheadDays int              `json:"lookaheadDays"`
	Samples       int              `json:"samples"`
	MeanAbs       float64          `json:"meanAbs"`
	Median        float64          `json:"median"`
	P75           float64          `json:"p75"`
	P90           float64          `json:"p90"`
	P95           float64          `json:"p95"`
	P99           float64          `json:"p99"`
	Min           float64          `json:"min"`
	Max           float64          `json:"max"`
	Buckets       []BucketCount    `json:"buckets"`
	Thresholds    []ThresholdCount `json:"thresholds"`
	UpMoves       int              `json:"upMoves"`
	DownMoves     int              `json:"downMoves"`
}

// nearestRank picks percentile p from an ascending-sorted slice using the
// floor(p/100*n) index, clamped to the last element. Not interpolated.
func nearestRank(sorted []float64, p float64) float64 {
	idx := int(p / 100 * float64(len(sorted)))
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Distribution computes the empirical move distribution of the series over
// a lookahead horizon. A series too short to yield the minimum sample count
// is ErrInsufficientData; a non-positive lookahead is ErrInvalidInput.
func Distribution(series Series, lookaheadDays int) (MoveDistribution, error) {
	if lookaheadDays <= 0 {
		return MoveDistribution{}, ErrInvalidInput
	}
	if len(series)-lookaheadDays < minDistributionSamples {
		return MoveDistribution{}, ErrInsufficientData
	}

	moves := make([]float64, 0, len(series)-lookaheadDays)
	ups, downs := 0, 0
	for i := lookaheadDays; i < len(series); i++ {
		from := series[i-lookaheadDays].Close
		to := series[i].Close
		if from <= 0 || to <= 0 {
			continue
		}
		move := (to - from) / from * 100
		if move > 0 {
			ups++
		} else if move < 0 {
			downs++
		}
		if move < 0 {
			move = -move
		}
		moves = append(moves, move)
	}
	if len(moves) == 0 {
		return MoveDistribution{}, ErrInsufficientData
	}
	sort.Float64s(moves)
	n := len(moves)

	buckets := make([]BucketCount, len(bucketBounds))
	for i, b := range bucketBounds {
		buckets[i].Label = b.label
	}
	for _, m := range moves {
		placed := false
		for i, b := range bucketBounds[:len(bucketBounds)-1] {
			if m <= b.upper {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			buckets[len(buckets)-1].Count++
		}
	}

	thresholds := make([]ThresholdCount, len(moveThresholds))
	for i, t := range moveThresholds {
		count := 0
		for _, m := range moves {
			if m >= t {
				count++
			}
		}
		thresholds[i] = ThresholdCount{
			Threshold: t,
			Count:     count,
			Percent:   float64(count) / float64(n) * 100,
		}
	}

	return MoveDistribution{
		LookaheadDays: lookaheadDays,
		Samples:       n,
		MeanAbs:       mean(moves),
		Median:        moves[(n-1)/2], // lower middle on even counts
		P75:           nearestRank(moves, 75),
		P90:           nearestRank(moves, 90),
		P95:           nearestRank(moves, 95),
		P99:           nearestRank(moves, 99),
		Min:           moves[0],
		Max:           moves[n-1],
		Buckets:       buckets,
		Thresholds:    thresholds,
		UpMoves:       ups,
		DownMoves:     downs,
	}, nil
}
