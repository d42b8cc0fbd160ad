package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	apperrors "ivlens/internal/errors"
	"ivlens/internal/models"
	"ivlens/internal/store"
)

// addPredictionCommands adds prediction journal commands.
func addPredictionCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "predictions",
		Short: "Manage logged volatility predictions",
		Long:  "Log, list and review volatility predictions made from the analysis.",
	}

	cmd.AddCommand(newPredictionLogCmd(app))
	cmd.AddCommand(newPredictionListCmd(app))
	cmd.AddCommand(newPredictionShowCmd(app))
	cmd.AddCommand(newPredictionDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func requireStore(app *App, output *Output) error {
	if app.Store == nil {
		output.Error("Prediction store unavailable")
		return apperrors.ErrNotConfigured
	}
	return nil
}

func newPredictionLogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <symbol>",
		Short: "Log a volatility prediction",
		Example: `  ivlens predictions log AAPL --iv 32 --days 30
  ivlens predictions log TSLA --iv 58 --days 14 --method ewma --notes "earnings week"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			userIV, _ := cmd.Flags().GetFloat64("iv")
			days, _ := cmd.Flags().GetInt("days")
			method, _ := cmd.Flags().GetString("method")
			adjustment, _ := cmd.Flags().GetFloat64("adjustment")
			notes, _ := cmd.Flags().GetString("notes")

			if userIV <= 0 {
				output.Error("--iv must be a positive annualized percent")
				return apperrors.ErrConfigInvalid
			}
			if days < 1 || days > 365 {
				output.Error("--days must be within 1..365")
				return apperrors.ErrInvalidHorizon
			}

			quote, err := app.Provider.Quote(ctx, symbol)
			if err != nil {
				output.Error("Failed to get quote: %v", err)
				return err
			}
			marketIV := 0.0
			if ivq, err := app.Provider.ImpliedVol(ctx, symbol); err == nil {
				marketIV = ivq.IV
			}

			p := &models.Prediction{
				Symbol:      symbol,
				Price:       quote.Price,
				UserIV:      userIV,
				MarketIV:    marketIV,
				HorizonDays: days,
				Method:      method,
				Adjustment:  adjustment,
				Notes:       notes,
			}
			if err := app.Store.SavePrediction(ctx, p); err != nil {
				output.Error("Failed to save prediction: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(p)
			}
			output.Success("Prediction %s logged for %s", p.ID, symbol)
			return nil
		},
	}

	cmd.Flags().Float64("iv", 0, "your volatility call, annualized percent (required)")
	cmd.Flags().IntP("days", "d", 30, "prediction horizon in calendar days")
	cmd.Flags().String("method", "", "estimation method the call is based on")
	cmd.Flags().Float64("adjustment", 0, "adjustment applied to the method value, percent points")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.MarkFlagRequired("iv")

	return cmd
}

func newPredictionListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged predictions, newest first",
		Example: `  ivlens predictions list
  ivlens predictions list --symbol AAPL --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol, _ := cmd.Flags().GetString("symbol")
			limit, _ := cmd.Flags().GetInt("limit")

			predictions, err := app.Store.ListPredictions(ctx, store.PredictionFilter{
				Symbol: strings.ToUpper(symbol),
				Limit:  limit,
			})
			if err != nil {
				output.Error("Failed to list predictions: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(predictions)
			}

			if len(predictions) == 0 {
				output.Dim("No predictions logged")
				return nil
			}
			color.Cyan("Predictions (%d)", len(predictions))
			output.Printf("  %-18s %-6s %8s %8s %6s  %-12s %s\n",
				"ID", "Sym", "Your IV", "Mkt IV", "Days", "Date", "Notes")
			for _, p := range predictions {
				output.Printf("  %-18s %-6s %8s %8s %6d  %-12s %s\n",
					p.ID, p.Symbol, FormatPercent(p.UserIV), FormatPercent(p.MarketIV),
					p.HorizonDays, FormatDate(p.CreatedAt), p.Notes)
			}
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().Int("limit", 50, "maximum rows")

	return cmd
}

func newPredictionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			p, err := app.Store.GetPrediction(ctx, args[0])
			if err != nil {
				if errors.Is(err, apperrors.ErrDataNotFound) {
					output.Error("Prediction %s not found", args[0])
				} else {
					output.Error("Failed to get prediction: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(p)
			}

			color.Cyan("Prediction %s", p.ID)
			output.Printf("  Symbol:     %s\n", p.Symbol)
			output.Printf("  Spot:       %s\n", FormatUSD(p.Price))
			output.Printf("  Your IV:    %s\n", FormatPercent(p.UserIV))
			if p.MarketIV > 0 {
				output.Printf("  Market IV:  %s (%s vs yours)\n",
					FormatPercent(p.MarketIV), FormatSignedPercent(p.UserIV-p.MarketIV))
			}
			output.Printf("  Horizon:    %d days\n", p.HorizonDays)
			if p.Method != "" {
				output.Printf("  Method:     %s (%s adjustment)\n", p.Method, FormatSignedPercent(p.Adjustment))
			}
			output.Printf("  Logged:     %s\n", FormatDate(p.CreatedAt))
			if p.Notes != "" {
				output.Printf("  Notes:      %s\n", p.Notes)
			}
			return nil
		},
	}
}

func newPredictionDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app, output); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.Store.DeletePrediction(ctx, args[0]); err != nil {
				if errors.Is(err, apperrors.ErrDataNotFound) {
					output.Error("Prediction %s not found", args[0])
				} else {
					output.Error("Failed to delete prediction: %v", err)
				}
				return err
			}
			output.Success("Prediction %s deleted", args[0])
			return nil
		},
	}
}
