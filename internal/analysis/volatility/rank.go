package volatility

import "math"

// RankResult positions a current value against a historical value set.
// Both fields are always within [0, 100].
type RankResult struct {
	Rank       float64 `json:"rank"`       // linear position between historical min and max
	Percentile float64 `json:"percentile"` // share of history strictly below the current value
}

// Rank computes the rank and percentile of current against history.
// Non-positive historical values are ignored; an empty filtered set or an
// unusable current value yields ErrInsufficientData / ErrInvalidInput.
func Rank(current float64, history []float64) (RankResult, error) {
	if current <= 0 || math.IsNaN(current) || math.IsInf(current, 0) {
		return RankResult{}, ErrInvalidInput
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	n, below := 0, 0
	for _, v := range history {
		if v <= 0 {
			continue
		}
		n++
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		if v < current {
			below++
		}
	}
	if n == 0 {
		return RankResult{}, ErrInsufficientData
	}

	rank := 50.0 // flat history: every value sits in the middle
	if hi > lo {
		rank = clamp((current-lo)/(hi-lo)*100, 0, 100)
	}
	percentile := clamp(float64(below)/float64(n)*100, 0, 100)
	return RankResult{Rank: rank, Percentile: percentile}, nil
}

// RankBand maps a rank to its qualitative display band. Labeling only,
// never used in computation.
func RankBand(rank float64) string {
	switch {
	case rank < 20:
		return "very low"
	case rank < 40:
		return "below average"
	case rank < 60:
		return "average"
	case rank < 80:
		return "above average"
	default:
		return "very high"
	}
}
