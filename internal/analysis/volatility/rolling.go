package volatility

import "time"

// RollingPoint is one point of a time-indexed realized-volatility series.
type RollingPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"` // annualized, percent
	Close float64   `json:"close"` // reference close at this point
}

// Roll applies an estimator over a sliding window: for every index i from
// window to len-1 the estimator sees bars [i-window, i] and emits one point
// keyed by the date and close at i. Window positions where the estimator
// cannot produce a value are skipped. The result is empty when the series
// does not cover a single full window.
func Roll(series Series, window int, est Estimator) ([]RollingPoint, error) {
	if window <= 0 {
		return nil, ErrInvalidInput
	}
	if len(series) <= window {
		return nil, nil
	}
	points := make([]RollingPoint, 0, len(series)-window)
	for i := window; i < len(series); i++ {
		e, err := est.Calculate(series[i-window : i+1])
		if err != nil {
			continue
		}
		points = append(points, RollingPoint{
			Date:  series[i].Date,
			Value: e.Value,
			Close: series[i].Close,
		})
	}
	return points, nil
}

// Values extracts the volatility values from a rolling series.
func Values(points []RollingPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
