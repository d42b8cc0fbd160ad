package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ivlens/internal/models"
	"ivlens/pkg/utils"
)

// addDataCommands adds market data commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newIVCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newSearchCmd(app))
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Get the latest quote for a symbol",
		Long: `Fetch and display the latest market quote for a symbol.

The quote includes price, previous close, day range, volume and beta.`,
		Example: `  ivlens quote AAPL
  ivlens quote TSLA --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			quote, err := app.Provider.Quote(ctx, symbol)
			if err != nil {
				output.Error("Failed to get quote: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}
			displayQuote(output, quote)
			return nil
		},
	}
}

func displayQuote(output *Output, quote models.Quote) {
	name := quote.ShortName
	if name == "" {
		name = quote.LongName
	}
	output.Bold("%s  %s", quote.Symbol, name)

	change := quote.Price - quote.PreviousClose
	changePct := 0.0
	if quote.PreviousClose > 0 {
		changePct = change / quote.PreviousClose * 100
	}
	changeText := fmt.Sprintf("%+.2f (%s)", change, FormatSignedPercent(changePct))
	if change >= 0 {
		changeText = output.Green(changeText)
	} else {
		changeText = output.Red(changeText)
	}
	output.Printf("  Price:  %s  %s\n", FormatUSD(quote.Price), changeText)
	output.Println()

	if quote.DayHigh > 0 {
		output.Printf("  Day Range:  %s - %s\n", FormatUSD(quote.DayLow), FormatUSD(quote.DayHigh))
	}
	if quote.FiftyTwoWeekHigh > 0 {
		output.Printf("  52W Range:  %s - %s\n", FormatUSD(quote.FiftyTwoWeekLow), FormatUSD(quote.FiftyTwoWeekHigh))
	}
	if quote.Volume > 0 {
		output.Printf("  Volume:     %s\n", FormatVolume(quote.Volume))
	}
	if quote.MarketCap > 0 {
		output.Printf("  Mkt Cap:    %s\n", FormatCompactUSD(float64(quote.MarketCap)))
	}
	if quote.Beta > 0 {
		output.Printf("  Beta:       %.2f\n", quote.Beta)
	}
	output.Dim("market %s", utils.GetMarketStatus())
}

func newIVCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "iv <symbol>",
		Short: "Get quoted implied volatility for a symbol",
		Long: `Fetch the at-the-money implied volatility for a symbol.

The source field shows whether the value came from the options chain, was
estimated from beta, or is a generic fallback.`,
		Example: `  ivlens iv AAPL`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			iv, err := app.Provider.ImpliedVol(ctx, symbol)
			if err != nil {
				output.Error("Failed to get implied volatility: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(iv)
			}

			output.Bold("%s implied volatility", iv.Symbol)
			output.Printf("  IV:      %s\n", FormatPercent(iv.IV))
			output.Printf("  Source:  %s\n", describeIVSource(iv.Source))
			if iv.ATMStrike > 0 {
				output.Printf("  Strike:  %s\n", FormatUSD(iv.ATMStrike))
			}
			if iv.Expiration != "" {
				output.Printf("  Expiry:  %s\n", iv.Expiration)
			}
			if iv.Source != models.IVSourceOptionsChain {
				output.Warning("IV is an estimate, not taken from a live options chain")
			}
			return nil
		},
	}
}

func describeIVSource(source models.IVSource) string {
	switch source {
	case models.IVSourceOptionsChain:
		return "options chain (ATM)"
	case models.IVSourceBetaEstimate:
		return "estimated from beta"
	case models.IVSourceFallback:
		return "fallback default"
	default:
		return string(source)
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Show historical daily bars for a symbol",
		Example: `  ivlens history AAPL
  ivlens history MSFT --period 6mo --last 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			period, _ := cmd.Flags().GetString("period")
			last, _ := cmd.Flags().GetInt("last")

			bars, err := app.Provider.History(ctx, symbol, period, "1d")
			if err != nil {
				output.Error("Failed to get history: %v", err)
				return err
			}
			if last > 0 && len(bars) > last {
				bars = bars[len(bars)-last:]
			}

			if output.IsJSON() {
				return output.JSON(bars)
			}

			output.Bold("%s  %d bars (%s)", symbol, len(bars), period)
			output.Printf("  %-12s %10s %10s %10s %10s %10s\n", "Date", "Open", "High", "Low", "Close", "Volume")
			for _, b := range bars {
				output.Printf("  %-12s %10.2f %10.2f %10.2f %10.2f %10s\n",
					b.Date.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, FormatVolume(b.Volume))
			}
			return nil
		},
	}

	cmd.Flags().String("period", "1y", "history period (1mo, 3mo, 6mo, 1y, 2y)")
	cmd.Flags().Int("last", 20, "show only the last N bars (0 for all)")

	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   "Search for ticker symbols",
		Example: `  ivlens search apple`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			query := strings.Join(args, " ")
			results, err := app.Provider.Search(ctx, query)
			if err != nil {
				output.Error("Search failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(results)
			}

			if len(results) == 0 {
				output.Warning("No matches for %q", query)
				return nil
			}
			for _, r := range results {
				name := r.ShortName
				if name == "" {
					name = r.LongName
				}
				output.Printf("  %-8s %-40s %s\n", r.Symbol, name, r.Exchange)
			}
			return nil
		},
	}
}
