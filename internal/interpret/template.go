package interpret

import (
	"context"
	"fmt"
	"strings"

	"ivlens/internal/analysis"
	"ivlens/internal/analysis/volatility"
)

// TemplateGenerator is the local fallback: deterministic formatting of the
// report, no I/O, never fails.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the local fallback provider.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) Name() string { return "local" }

func (g *TemplateGenerator) Generate(_ context.Context, report *analysis.Report) (string, error) {
	var b strings.Builder

	if report.IV != nil && report.Rank != nil {
		fmt.Fprintf(&b, "%s implied volatility is %.1f%%, a %s level against its %d-bar realized history (rank %.0f, percentile %.0f). ",
			report.Symbol, report.IV.IV, report.RankBand, report.Window, report.Rank.Rank, report.Rank.Percentile)
	} else if report.IV != nil {
		fmt.Fprintf(&b, "%s implied volatility is quoted at %.1f%%; realized history is too short for rank context. ",
			report.Symbol, report.IV.IV)
	} else {
		fmt.Fprintf(&b, "No implied volatility quote is available for %s; the analysis below rests on realized measures only. ",
			report.Symbol)
	}

	if cc := findEstimate(report, volatility.MethodCloseToClose); cc != nil && report.IV != nil {
		diff := report.IV.IV - cc.Value
		switch {
		case diff > 3:
			fmt.Fprintf(&b, "Options are pricing %.1f points more volatility than recently realized (%.1f%%), a premium often seen ahead of events. ", diff, cc.Value)
		case diff < -3:
			fmt.Fprintf(&b, "Options are pricing %.1f points less volatility than recently realized (%.1f%%); the market expects calm to return. ", -diff, cc.Value)
		default:
			fmt.Fprintf(&b, "Implied and realized volatility (%.1f%%) are closely aligned. ", cc.Value)
		}
	}

	if report.ExpectedMove != nil {
		fmt.Fprintf(&b, "The quoted IV implies a one-sigma move of about %.2f (%.2f%%) over %d days. ",
			report.ExpectedMove.Move, report.ExpectedMove.MovePercent, report.HorizonDays)
	}

	if d := report.Distribution; d != nil {
		fmt.Fprintf(&b, "Historically, %d-day moves have had a median of %.2f%% with %.1f%% of samples beyond 5%%.",
			d.LookaheadDays, d.Median, thresholdPercent(d, 5))
	}

	return strings.TrimSpace(b.String()), nil
}

func findEstimate(report *analysis.Report, method volatility.Method) *volatility.Estimate {
	for _, mv := range report.Methods {
		if mv.Method == method {
			return mv.Estimate
		}
	}
	return nil
}

func thresholdPercent(d *volatility.MoveDistribution, threshold float64) float64 {
	for _, t := range d.Thresholds {
		if t.Threshold == threshold {
			return t.Percent
		}
	}
	return 0
}
