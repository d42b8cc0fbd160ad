package volatility

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData is returned when the sample is too short for the
	// requested computation.
	ErrInsufficientData = errors.New("insufficient data for calculation")
	// ErrInvalidInput is returned for non-positive prices, horizons or windows.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable is returned when a method cannot be computed from the
	// given series, e.g. a range-based estimator on close-only bars.
	ErrUnavailable = errors.New("method unavailable for this series")
)

// TradingDays is the annualization basis for daily bars.
const TradingDays = 252

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// stdDev calculates the population standard deviation of a slice of float64.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// variance calculates the population variance of a slice of float64.
func variance(values []float64) float64 {
	sd := stdDev(values)
	return sd * sd
}

// logReturns computes ln(close[i]/close[i-1]) over a series of closes.
// Closes are positive by construction after Normalize.
func logReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	return returns
}

// annualize converts a per-bar standard deviation of returns into an
// annualized percentage volatility.
func annualize(sd float64) float64 {
	return sd * math.Sqrt(TradingDays) * 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
