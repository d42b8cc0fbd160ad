// Package volatility provides the pure numerical engine behind the options
// dashboard: competing volatility estimators, rolling realized-volatility
// series, rank/percentile context, expected-move projections and empirical
// move distributions. All computations are synchronous, side-effect free and
// treat their inputs as read-only.
package volatility

import (
	"math"
	"sort"

	"ivlens/internal/models"
)

// Series is an ordered price history, strictly ascending by date, with
// positive finite closes. Build one with Normalize.
type Series []models.Bar

// Closes extracts close prices from the series.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Tail returns the trailing n bars, or the whole series if it is shorter.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Normalize validates and shapes raw bars into a Series: bars are sorted
// ascending by date and bars with non-positive or non-finite closes are
// dropped. Returns ErrInsufficientData when fewer than two bars survive.
func Normalize(bars []models.Bar) (Series, error) {
	cleaned := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		cleaned = append(cleaned, b)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})
	if len(cleaned) < 2 {
		return nil, ErrInsufficientData
	}
	return Series(cleaned), nil
}
