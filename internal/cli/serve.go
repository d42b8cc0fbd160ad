package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ivlens/internal/server"
)

// addServeCommand adds the HTTP server command.
func addServeCommand(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics HTTP API",
		Long: `Start the HTTP API consumed by the dashboard frontend.

The server exposes quotes, implied volatility, history, full analysis,
expected move projections, move distributions, interpretations and the
prediction journal.`,
		Example: `  ivlens serve
  ivlens serve --address :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			address, _ := cmd.Flags().GetString("address")
			if address == "" {
				address = app.Config.Server.Address
			}

			handler := server.NewHandler(app.Provider, app.Analyzer, app.Chain, app.Store, app.Logger)
			handler.SetDefaultHorizon(app.Config.Analysis.DefaultHorizon)

			srv := server.New(handler, app.Logger,
				server.WithAddress(address),
				server.WithAllowOrigins(app.Config.Server.AllowOrigins),
			)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			output.Info("Serving on %s (Ctrl-C to stop)", address)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil {
					output.Error("Server failed: %v", err)
				}
				return err
			case <-sigCh:
				output.Println()
				output.Info("Shutting down...")
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					output.Error("Shutdown error: %v", err)
					return err
				}
				output.Success("Server stopped")
				return nil
			}
		},
	}

	cmd.Flags().String("address", "", "listen address (default from config)")

	rootCmd.AddCommand(cmd)
}
