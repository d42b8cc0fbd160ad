package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ivlens/internal/analysis"
	"ivlens/internal/analysis/volatility"
)

// addAnalysisCommands adds volatility analysis commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newSnapshotCmd(app))
	rootCmd.AddCommand(newMoveCmd(app))
	rootCmd.AddCommand(newRankCmd(app))
	rootCmd.AddCommand(newDistributionCmd(app))
	rootCmd.AddCommand(newInterpretCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Full volatility analysis for a symbol",
		Long: `Run the complete volatility analysis for a symbol:
- Quoted implied volatility and its source
- Realized volatility estimates across all methods
- IV rank and percentile against the rolling realized history
- Expected move at 68/95/99 percent confidence
- Empirical move distribution at the chosen horizon`,
		Example: `  ivlens analyze AAPL
  ivlens analyze TSLA --horizon 14
  ivlens analyze NVDA --horizon 45 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			horizon, _ := cmd.Flags().GetInt("horizon")

			report, err := app.Analyzer.Analyze(ctx, symbol, horizon)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			displayReport(output, report)
			return nil
		},
	}

	cmd.Flags().IntP("horizon", "d", 30, "projection horizon in calendar days (1-365)")

	return cmd
}

func displayReport(output *Output, report *analysis.Report) {
	color.Cyan("Volatility Analysis - %s", report.Symbol)
	output.Printf("  Spot: %s   Horizon: %d days   Window: %d bars\n",
		FormatUSD(report.Quote.Price), report.HorizonDays, report.Window)
	output.Println()

	if report.IV != nil {
		output.Bold("Implied Volatility: %s (%s)", FormatPercent(report.IV.IV), describeIVSource(report.IV.Source))
	} else {
		output.Warning("Implied volatility unavailable")
	}
	if report.Rank != nil {
		output.Printf("  IV Rank: %.1f   Percentile: %.1f   (%s)\n",
			report.Rank.Rank, report.Rank.Percentile, report.RankBand)
	}
	output.Println()

	output.Bold("Realized Volatility Estimates")
	for _, mv := range report.Methods {
		value := "N/A"
		note := ""
		if mv.Estimate != nil {
			value = FormatPercent(mv.Estimate.Value)
			if mv.Estimate.Reduced {
				note = " (reduced sample)"
			}
		}
		delta := ""
		if mv.DeltaIV != nil {
			d := FormatSignedPercent(*mv.DeltaIV)
			if *mv.DeltaIV >= 0 {
				delta = "  " + output.Green(d+" vs IV")
			} else {
				delta = "  " + output.Red(d+" vs IV")
			}
		}
		output.Printf("  %-22s %10s%s%s\n", mv.Info.Label, value, note, delta)
	}
	output.Println()

	if report.ExpectedMove != nil {
		output.Bold("Expected Move (%d days)", report.HorizonDays)
		output.Printf("  1 sigma: %s (%s)\n",
			FormatUSD(report.ExpectedMove.Move), FormatPercent(report.ExpectedMove.MovePercent))
		for _, r := range report.Ranges {
			output.Printf("  %d%%: %s - %s\n", r.Level, FormatUSD(r.Low), FormatUSD(r.High))
		}
		output.Println()
	}

	if report.Distribution != nil {
		displayDistribution(output, report.Distribution)
	}
}

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <symbol>",
		Short: "Realized volatility estimates across all methods",
		Long: `Compute every realized volatility estimate for a symbol from its
price history, without the full analysis. The quoted IV row is included
when available.`,
		Example: `  ivlens snapshot AAPL
  ivlens snapshot TSLA --period 6mo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			period, _ := cmd.Flags().GetString("period")

			bars, err := app.Provider.History(ctx, symbol, period, "1d")
			if err != nil {
				output.Error("Failed to get history: %v", err)
				return err
			}
			series, err := volatility.Normalize(bars)
			if err != nil {
				output.Error("History unusable: %v", err)
				return err
			}

			quotedIV := 0.0
			if ivq, err := app.Provider.ImpliedVol(ctx, symbol); err == nil {
				quotedIV = ivq.IV
			}

			snapshot := volatility.BuildSnapshot(series, quotedIV)

			if output.IsJSON() {
				return output.JSON(snapshot)
			}

			color.Cyan("Volatility Snapshot - %s (%d bars)", symbol, len(series))
			for _, m := range volatility.Methods() {
				info, _ := volatility.Describe(m)
				est, ok := snapshot[m]
				if !ok {
					output.Printf("  %-22s %10s\n", info.Label, "N/A")
					continue
				}
				note := ""
				if est.Reduced {
					note = " (reduced sample)"
				}
				output.Printf("  %-22s %10s%s\n", info.Label, FormatPercent(est.Value), note)
			}
			if deltas := snapshot.Deltas(); deltas != nil {
				output.Println()
				output.Bold("Spread vs quoted IV")
				for _, m := range volatility.Methods() {
					if d, ok := deltas[m]; ok {
						output.Printf("  %-22s %10s\n", string(m), FormatSignedPercent(d))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().String("period", "1y", "history period (3mo, 6mo, 1y, 2y)")

	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <symbol>",
		Short: "Project the expected move for a symbol",
		Long: `Project the expected move implied by a volatility level over a horizon.

By default the quoted IV and current spot are fetched; both can be
overridden to answer "what if" questions without market data.`,
		Example: `  ivlens move AAPL --days 30
  ivlens move AAPL --iv 35 --days 14
  ivlens move --iv 30 --spot 100 --days 30`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			days, _ := cmd.Flags().GetInt("days")
			iv, _ := cmd.Flags().GetFloat64("iv")
			spot, _ := cmd.Flags().GetFloat64("spot")

			symbol := ""
			if len(args) == 1 {
				symbol = strings.ToUpper(args[0])
			}
			if symbol == "" && (iv <= 0 || spot <= 0) {
				output.Error("Provide a symbol or explicit --iv and --spot values")
				return volatility.ErrInvalidInput
			}

			if symbol != "" {
				if spot <= 0 {
					quote, err := app.Provider.Quote(ctx, symbol)
					if err != nil {
						output.Error("Failed to get quote: %v", err)
						return err
					}
					spot = quote.Price
				}
				if iv <= 0 {
					ivq, err := app.Provider.ImpliedVol(ctx, symbol)
					if err != nil {
						output.Error("Failed to get implied volatility: %v", err)
						return err
					}
					iv = ivq.IV
				}
			}

			move, err := volatility.Project(iv, days, spot)
			if err != nil {
				output.Error("Projection failed: %v", err)
				return err
			}
			ranges, err := volatility.Ranges(iv, days, spot)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":      symbol,
					"iv":          iv,
					"spot":        spot,
					"horizonDays": days,
					"move":        move,
					"ranges":      ranges,
				})
			}

			title := "Expected Move"
			if symbol != "" {
				title += " - " + symbol
			}
			color.Cyan(title)
			output.Printf("  IV: %s   Spot: %s   Horizon: %d days\n", FormatPercent(iv), FormatUSD(spot), days)
			output.Printf("  1 sigma: %s (%s)\n", FormatUSD(move.Move), FormatPercent(move.MovePercent))
			for _, r := range ranges {
				output.Printf("  %d%%: %s - %s\n", r.Level, FormatUSD(r.Low), FormatUSD(r.High))
			}
			return nil
		},
	}

	cmd.Flags().IntP("days", "d", 30, "horizon in calendar days")
	cmd.Flags().Float64("iv", 0, "implied volatility override, annualized percent")
	cmd.Flags().Float64("spot", 0, "spot price override")

	return cmd
}

func newRankCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <symbol>",
		Short: "IV rank against the realized volatility history",
		Long: `Rank the quoted implied volatility against one year of rolling
realized volatility. Rank 0 means IV sits at the historical low, 100 at
the high; percentile is the share of history strictly below today's IV.`,
		Example: `  ivlens rank AAPL
  ivlens rank SPY --window 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			window, _ := cmd.Flags().GetInt("window")

			ivq, err := app.Provider.ImpliedVol(ctx, symbol)
			if err != nil {
				output.Error("Failed to get implied volatility: %v", err)
				return err
			}
			bars, err := app.Provider.History(ctx, symbol, analysis.HistoryPeriod, "1d")
			if err != nil {
				output.Error("Failed to get history: %v", err)
				return err
			}
			series, err := volatility.Normalize(bars)
			if err != nil {
				output.Error("History unusable: %v", err)
				return err
			}
			points, err := volatility.Roll(series, window, volatility.NewCloseToClose(0))
			if err != nil {
				output.Error("Rolling volatility failed: %v", err)
				return err
			}
			rank, err := volatility.Rank(ivq.IV, volatility.Values(points))
			if err != nil {
				output.Error("Rank unavailable: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     symbol,
					"iv":         ivq.IV,
					"window":     window,
					"rank":       rank.Rank,
					"percentile": rank.Percentile,
					"band":       volatility.RankBand(rank.Rank),
				})
			}

			color.Cyan("IV Rank - %s", symbol)
			output.Printf("  IV: %s (%s)\n", FormatPercent(ivq.IV), describeIVSource(ivq.Source))
			output.Printf("  Rank:       %.1f / 100\n", rank.Rank)
			output.Printf("  Percentile: %.1f\n", rank.Percentile)
			output.Printf("  Band:       %s\n", volatility.RankBand(rank.Rank))
			return nil
		},
	}

	cmd.Flags().IntP("window", "w", 20, "rolling realized volatility window in bars")

	return cmd
}

func newDistributionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution <symbol>",
		Short: "Empirical move distribution for a symbol",
		Long: `Measure how the symbol has actually moved over every overlapping
window of the chosen length, as a histogram and exceedance table.`,
		Example: `  ivlens distribution AAPL --days 30
  ivlens distribution TSLA --days 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			days, _ := cmd.Flags().GetInt("days")

			bars, err := app.Provider.History(ctx, symbol, analysis.HistoryPeriod, "1d")
			if err != nil {
				output.Error("Failed to get history: %v", err)
				return err
			}
			series, err := volatility.Normalize(bars)
			if err != nil {
				output.Error("History unusable: %v", err)
				return err
			}
			dist, err := volatility.Distribution(series, days)
			if err != nil {
				output.Error("Distribution unavailable: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(dist)
			}

			color.Cyan("Move Distribution - %s (%d day windows)", symbol, days)
			displayDistribution(output, &dist)
			return nil
		},
	}

	cmd.Flags().IntP("days", "d", 30, "lookahead window in trading days")

	return cmd
}

func displayDistribution(output *Output, dist *volatility.MoveDistribution) {
	output.Bold("Historical Moves (%d day windows, %d samples)", dist.LookaheadDays, dist.Samples)
	output.Printf("  Mean |move|: %s   Median: %s\n", FormatPercent(dist.MeanAbs), FormatPercent(dist.Median))
	output.Printf("  P75: %s   P90: %s   P95: %s   P99: %s\n",
		FormatPercent(dist.P75), FormatPercent(dist.P90), FormatPercent(dist.P95), FormatPercent(dist.P99))
	output.Printf("  Range: %s - %s   Up: %d   Down: %d\n",
		FormatPercent(dist.Min), FormatPercent(dist.Max), dist.UpMoves, dist.DownMoves)
	output.Println()

	for _, b := range dist.Buckets {
		share := 0.0
		if dist.Samples > 0 {
			share = float64(b.Count) / float64(dist.Samples) * 100
		}
		bar := strings.Repeat("#", int(share/2))
		output.Printf("  %-7s %4d  %5.1f%%  %s\n", b.Label, b.Count, share, bar)
	}
	output.Println()

	for _, th := range dist.Thresholds {
		output.Printf("  moved >= %s: %d times (%s)\n",
			FormatPercent(th.Threshold), th.Count, FormatPercent(th.Percent))
	}
}

func newInterpretCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interpret <symbol>",
		Short: "Plain-language interpretation of the analysis",
		Long: `Run the full analysis and generate a plain-language summary.

Uses the configured language model when credentials are present and falls
back to a deterministic local summary otherwise.`,
		Example: `  ivlens interpret AAPL
  ivlens interpret TSLA --horizon 14`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			horizon, _ := cmd.Flags().GetInt("horizon")

			report, err := app.Analyzer.Analyze(ctx, symbol, horizon)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}
			result, err := app.Chain.Generate(ctx, report)
			if err != nil {
				output.Error("Interpretation failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{
					"symbol":   symbol,
					"horizon":  strconv.Itoa(horizon),
					"provider": result.Provider,
					"text":     result.Text,
				})
			}

			color.Cyan("Interpretation - %s", symbol)
			output.Dim("provider: %s", result.Provider)
			output.Println()
			output.Println(result.Text)
			return nil
		},
	}

	cmd.Flags().IntP("horizon", "d", 30, "projection horizon in calendar days")

	return cmd
}
