package volatility

// Method identifies a volatility estimation method.
type Method string

const (
	MethodImplied      Method = "implied"
	MethodCloseToClose Method = "close_to_close"
	MethodParkinson    Method = "parkinson"
	MethodGarmanKlass  Method = "garman_klass"
	MethodEWMA         Method = "ewma"
	MethodHist30D      Method = "hist_30d"
	MethodHist90D      Method = "hist_90d"
	MethodHist1Y       Method = "hist_1y"
)

// Info holds display metadata for a method. Callers can enumerate methods
// and render names independent of computed values.
type Info struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var methodInfo = map[Method]Info{
	MethodImplied: {
		Label:       "Implied Volatility",
		Description: "Market-quoted IV backed out from the ATM options chain",
		Icon:        "activity",
	},
	MethodCloseToClose: {
		Label:       "Realized (Close-to-Close)",
		Description: "Standard deviation of daily log returns, annualized",
		Icon:        "trending-up",
	},
	MethodParkinson: {
		Label:       "Parkinson",
		Description: "Range-based estimator using intraday high-low ratios",
		Icon:        "bar-chart",
	},
	MethodGarmanKlass: {
		Label:       "Garman-Klass",
		Description: "OHLC estimator combining high-low and open-close ranges",
		Icon:        "candlestick-chart",
	},
	MethodEWMA: {
		Label:       "EWMA",
		Description: "Exponentially weighted volatility with RiskMetrics decay",
		Icon:        "waves",
	},
	MethodHist30D: {
		Label:       "30-Day Historical",
		Description: "Realized volatility over the trailing 30 bars",
		Icon:        "calendar",
	},
	MethodHist90D: {
		Label:       "90-Day Historical",
		Description: "Realized volatility over the trailing 90 bars",
		Icon:        "calendar",
	},
	MethodHist1Y: {
		Label:       "1-Year Historical",
		Description: "Realized volatility over the trailing 252 bars",
		Icon:        "calendar",
	},
}

// methodOrder is the stable display order for snapshots and tables.
var methodOrder = []Method{
	MethodImplied,
	MethodCloseToClose,
	MethodParkinson,
	MethodGarmanKlass,
	MethodEWMA,
	MethodHist30D,
	MethodHist90D,
	MethodHist1Y,
}

// Methods returns all supported methods in display order.
func Methods() []Method {
	out := make([]Method, len(methodOrder))
	copy(out, methodOrder)
	return out
}

// Describe returns display metadata for a method.
func Describe(m Method) (Info, bool) {
	info, ok := methodInfo[m]
	return info, ok
}
