package volatility

import (
	"math"
)

// Estimate is a single annualized volatility estimate. Value is a
// percentage and never negative; an estimate that cannot be computed is
// reported through a sentinel error, never as NaN or a negative value.
type Estimate struct {
	Method  Method  `json:"method"`
	Value   float64 `json:"value"`   // annualized, percent
	Window  int     `json:"window"`  // sample bars actually used
	Reduced bool    `json:"reduced"` // true when computed on fewer bars than requested
}

// Estimator computes one volatility estimate from a normalized series.
type Estimator interface {
	Method() Method
	Calculate(series Series) (Estimate, error)
}

// CloseToClose is the classic realized-volatility estimator: annualized
// standard deviation of daily log returns.
type CloseToClose struct {
	window int // trailing bars; 0 means the entire series
}

// NewCloseToClose creates a close-to-close estimator over the trailing
// window bars (0 = entire series).
func NewCloseToClose(window int) *CloseToClose {
	return &CloseToClose{window: window}
}

func (c *CloseToClose) Method() Method { return MethodCloseToClose }

func (c *CloseToClose) Calculate(series Series) (Estimate, error) {
	sub := series.Tail(c.window)
	returns := logReturns(sub.Closes())
	if len(returns) < 2 {
		return Estimate{}, ErrInsufficientData
	}
	return Estimate{
		Method: c.Method(),
		Value:  annualize(stdDev(returns)),
		Window: len(sub),
	}, nil
}

// Historical is a multi-period close-to-close estimator. Unlike
// CloseToClose it degrades gracefully: a series shorter than the requested
// window still yields an estimate, flagged as reduced-sample.
type Historical struct {
	method Method
	window int
}

// NewHistorical creates a historical estimator reporting under the given
// method identifier over the trailing window bars.
func NewHistorical(method Method, window int) *Historical {
	return &Historical{method: method, window: window}
}

func (h *Historical) Method() Method { return h.method }

func (h *Historical) Calculate(series Series) (Estimate, error) {
	sub := series.Tail(h.window)
	returns := logReturns(sub.Closes())
	if len(returns) < 2 {
		return Estimate{}, ErrInsufficientData
	}
	return Estimate{
		Method:  h.method,
		Value:   annualize(stdDev(returns)),
		Window:  len(sub),
		Reduced: len(series) < h.window,
	}, nil
}

// Parkinson estimates volatility from intraday high-low ranges. Bars
// without a usable range (non-positive high or low, or high <= low) are
// excluded; a series with no admissible bars is unavailable.
type Parkinson struct {
	window int
}

// NewParkinson creates a Parkinson estimator over the trailing window bars
// (0 = entire series).
func NewParkinson(window int) *Parkinson {
	return &Parkinson{window: window}
}

func (p *Parkinson) Method() Method { return MethodParkinson }

func (p *Parkinson) Calculate(series Series) (Estimate, error) {
	sub := series.Tail(p.window)
	var total float64
	n := 0
	for _, b := range sub {
		if !b.HasRange() {
			continue
		}
		hl := math.Log(b.High / b.Low)
		total += hl * hl
		n++
	}
	if n == 0 {
		return Estimate{}, ErrUnavailable
	}
	value := math.Sqrt(total/(4*math.Ln2*float64(n))*TradingDays) * 100
	return Estimate{
		Method: p.Method(),
		Value:  value,
		Window: n,
	}, nil
}

// GarmanKlass estimates volatility from full OHLC bars, combining the
// high-low range with the open-close range using the standard weights.
type GarmanKlass struct {
	window int
}

// NewGarmanKlass creates a Garman-Klass estimator over the trailing window
// bars (0 = entire series).
func NewGarmanKlass(window int) *GarmanKlass {
	return &GarmanKlass{window: window}
}

func (g *GarmanKlass) Method() Method { return MethodGarmanKlass }

func (g *GarmanKlass) Calculate(series Series) (Estimate, error) {
	sub := series.Tail(g.window)
	var total float64
	n := 0
	for _, b := range sub {
		if !b.HasRange() || b.Open <= 0 {
			continue
		}
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		total += 0.5*hl*hl - (2*math.Ln2-1)*co*co
		n++
	}
	if n == 0 {
		return Estimate{}, ErrUnavailable
	}
	// The open-close correction can push a degenerate sample negative.
	perBar := total / float64(n)
	if perBar < 0 {
		return Estimate{}, ErrUnavailable
	}
	value := math.Sqrt(perBar*TradingDays) * 100
	return Estimate{
		Method: g.Method(),
		Value:  value,
		Window: n,
	}, nil
}

// EWMA defaults, the conventional RiskMetrics-style choices.
const (
	DefaultLambda     = 0.94
	DefaultSeedWindow = 20
)

// EWMA is a decayed volatility estimator over squared log returns. The
// recursion is seeded with the simple variance of the first seedWindow
// returns and then rolled forward with sigma2 = lambda*sigma2 + (1-lambda)*r2.
type EWMA struct {
	lambda     float64
	seedWindow int
}

// NewEWMA creates an EWMA estimator. Non-positive parameters fall back to
// the RiskMetrics defaults.
func NewEWMA(lambda float64, seedWindow int) *EWMA {
	if lambda <= 0 || lambda >= 1 {
		lambda = DefaultLambda
	}
	if seedWindow <= 0 {
		seedWindow = DefaultSeedWindow
	}
	return &EWMA{lambda: lambda, seedWindow: seedWindow}
}

func (e *EWMA) Method() Method { return MethodEWMA }

func (e *EWMA) Calculate(series Series) (Estimate, error) {
	returns := logReturns(series.Closes())
	if len(returns) < e.seedWindow {
		return Estimate{}, ErrInsufficientData
	}
	sigma2 := variance(returns[:e.seedWindow])
	for _, r := range returns[e.seedWindow:] {
		sigma2 = e.lambda*sigma2 + (1-e.lambda)*r*r
	}
	return Estimate{
		Method: e.Method(),
		Value:  math.Sqrt(sigma2*TradingDays) * 100,
		Window: len(returns),
	}, nil
}

// DefaultEstimators returns the full estimator set driving a snapshot, in
// display order.
func DefaultEstimators() []Estimator {
	return []Estimator{
		NewCloseToClose(0),
		NewParkinson(0),
		NewGarmanKlass(0),
		NewEWMA(DefaultLambda, DefaultSeedWindow),
		NewHistorical(MethodHist30D, 30),
		NewHistorical(MethodHist90D, 90),
		NewHistorical(MethodHist1Y, TradingDays),
	}
}
