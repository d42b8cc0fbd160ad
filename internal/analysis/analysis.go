// Package analysis orchestrates the volatility engine against the market
// data provider and assembles the full report consumed by the CLI, the HTTP
// API and the interpretation chain.
package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ivlens/internal/analysis/volatility"
	apperrors "ivlens/internal/errors"
	"ivlens/internal/logging"
	"ivlens/internal/models"
)

// MarketData is the slice of the provider the analyzer needs.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	ImpliedVol(ctx context.Context, symbol string) (models.IVQuote, error)
	History(ctx context.Context, symbol, period, interval string) ([]models.Bar, error)
}

// MethodView pairs a method's display metadata with its computed estimate,
// if any. Estimate is nil when the method is unavailable for the series.
type MethodView struct {
	Method   volatility.Method    `json:"method"`
	Info     volatility.Info      `json:"info"`
	Estimate *volatility.Estimate `json:"estimate,omitempty"`
	DeltaIV  *float64             `json:"deltaIv,omitempty"` // estimate minus quoted IV
}

// Report is the complete volatility analysis for one symbol and horizon.
// Undefined results are nil, never zero: the frontend renders them as N/A.
type Report struct {
	Symbol       string                       `json:"symbol"`
	Quote        models.Quote                 `json:"quote"`
	IV           *models.IVQuote              `json:"iv,omitempty"`
	HorizonDays  int                          `json:"horizonDays"`
	Window       int                          `json:"window"`
	Methods      []MethodView                 `json:"methods"`
	Rolling      []volatility.RollingPoint    `json:"rolling,omitempty"`
	Rank         *volatility.RankResult       `json:"rank,omitempty"`
	RankBand     string                       `json:"rankBand,omitempty"`
	ExpectedMove *volatility.ExpectedMove     `json:"expectedMove,omitempty"`
	Ranges       []volatility.ConfidenceRange `json:"ranges,omitempty"`
	Distribution *volatility.MoveDistribution `json:"distribution,omitempty"`
	GeneratedAt  time.Time                    `json:"generatedAt"`
}

// DefaultWindow is the rolling realized-volatility window driving the chart
// and the rank history.
const DefaultWindow = 20

// HistoryPeriod is the provider period fetched for analysis.
const HistoryPeriod = "1y"

// Analyzer fans a symbol out to the engine.
type Analyzer struct {
	provider MarketData
	logger   zerolog.Logger
	window   int
}

// NewAnalyzer creates an analyzer over the given provider.
func NewAnalyzer(provider MarketData, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		logger:   logger.With().Str("component", "analyzer").Logger(),
		window:   DefaultWindow,
	}
}

// SetWindow overrides the rolling window (bars). Values below 2 are ignored.
func (a *Analyzer) SetWindow(window int) {
	if window >= 2 {
		a.window = window
	}
}

// Analyze fetches quote, IV and history for the symbol and runs the full
// engine fan-out. Engine-level "insufficient data" states surface as nil
// report fields, not as errors; only provider failures and invalid inputs
// fail the call.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, horizonDays int) (*Report, error) {
	if horizonDays < 1 || horizonDays > 365 {
		return nil, apperrors.ErrInvalidHorizon
	}
	start := time.Now()
	log := logging.WithSymbol(a.logger, symbol)

	quote, err := a.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Symbol:      quote.Symbol,
		Quote:       quote,
		HorizonDays: horizonDays,
		Window:      a.window,
		GeneratedAt: time.Now().UTC(),
	}

	// A missing IV quote degrades the report instead of failing it.
	quotedIV := 0.0
	if iv, err := a.provider.ImpliedVol(ctx, symbol); err != nil {
		log.Warn().Err(err).Msg("implied volatility unavailable")
	} else {
		report.IV = &iv
		quotedIV = iv.IV
	}

	bars, err := a.provider.History(ctx, symbol, HistoryPeriod, "1d")
	if err != nil {
		return nil, err
	}
	series, err := volatility.Normalize(bars)
	if err != nil {
		log.Warn().Err(err).Int("bars", len(bars)).Msg("history too short for analysis")
		report.Methods = methodViews(volatility.Snapshot{}, quotedIV)
		return report, nil
	}

	snapshot := volatility.BuildSnapshot(series, quotedIV)
	report.Methods = methodViews(snapshot, quotedIV)

	rolling, err := volatility.Roll(series, a.window, volatility.NewCloseToClose(0))
	if err == nil {
		report.Rolling = rolling
	}

	if quotedIV > 0 && len(rolling) > 0 {
		if rank, err := volatility.Rank(quotedIV, volatility.Values(rolling)); err == nil {
			report.Rank = &rank
			report.RankBand = volatility.RankBand(rank.Rank)
		}
	}

	if quotedIV > 0 && quote.Price > 0 {
		if em, err := volatility.Project(quotedIV, horizonDays, quote.Price); err == nil {
			report.ExpectedMove = &em
		}
		if ranges, err := volatility.Ranges(quotedIV, horizonDays, quote.Price); err == nil {
			report.Ranges = ranges
		}
	}

	if dist, err := volatility.Distribution(series, horizonDays); err == nil {
		report.Distribution = &dist
	} else {
		log.Debug().Err(err).Int("horizon", horizonDays).Msg("move distribution unavailable")
	}

	logging.LogAnalysis(a.logger, report.Symbol, horizonDays, time.Since(start))
	return report, nil
}

// methodViews assembles the display table: every supported method appears,
// whether or not it could be computed.
func methodViews(snapshot volatility.Snapshot, quotedIV float64) []MethodView {
	views := make([]MethodView, 0, len(volatility.Methods()))
	for _, m := range volatility.Methods() {
		info, _ := volatility.Describe(m)
		view := MethodView{Method: m, Info: info}
		if est, ok := snapshot[m]; ok {
			e := est
			view.Estimate = &e
			if quotedIV > 0 && m != volatility.MethodImplied {
				delta := e.Value - quotedIV
				view.DeltaIV = &delta
			}
		}
		views = append(views, view)
	}
	return views
}
