package volatility

import "math"

// ExpectedMove is the one-standard-deviation price move implied by a
// volatility figure over a horizon, assuming a log-normal zero-drift price
// process.
type ExpectedMove struct {
	Move        float64 `json:"move"`        // absolute price delta
	MovePercent float64 `json:"movePercent"` // percent of spot
}

// ConfidenceRange is a projected price range at a stated confidence level.
type ConfidenceRange struct {
	Level int     `json:"level"` // 68, 95 or 99
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// ConfidenceLevels are the supported projection levels in display order.
var ConfidenceLevels = []int{68, 95, 99}

// confidenceZ holds the normal-distribution multipliers per level.
var confidenceZ = map[int]float64{
	68: 1.0,
	95: 1.96,
	99: 2.58,
}

// Project converts an annualized IV (percent) and a horizon in days into
// the expected one-sigma move of spot. Non-positive IV, horizon or spot
// yields ErrInvalidInput.
func Project(ivPercent float64, horizonDays int, spot float64) (ExpectedMove, error) {
	if ivPercent <= 0 || horizonDays <= 0 || spot <= 0 {
		return ExpectedMove{}, ErrInvalidInput
	}
	t := float64(horizonDays) / 365.0
	sigma := ivPercent / 100.0
	scale := sigma * math.Sqrt(t)
	return ExpectedMove{
		Move:        spot * scale,
		MovePercent: scale * 100,
	}, nil
}

// Range projects the price bounds at one confidence level. Unknown levels
// yield ErrInvalidInput.
func Range(ivPercent float64, horizonDays int, spot float64, level int) (ConfidenceRange, error) {
	z, ok := confidenceZ[level]
	if !ok {
		return ConfidenceRange{}, ErrInvalidInput
	}
	em, err := Project(ivPercent, horizonDays, spot)
	if err != nil {
		return ConfidenceRange{}, err
	}
	return ConfidenceRange{
		Level: level,
		Low:   spot - z*em.Move,
		High:  spot + z*em.Move,
	}, nil
}

// Ranges projects all supported confidence levels.
func Ranges(ivPercent float64, horizonDays int, spot float64) ([]ConfidenceRange, error) {
	out := make([]ConfidenceRange, 0, len(ConfidenceLevels))
	for _, level := range ConfidenceLevels {
		r, err := Range(ivPercent, horizonDays, spot, level)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
