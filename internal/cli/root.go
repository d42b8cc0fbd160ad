// Package cli provides the command-line interface for the volatility
// analytics application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ivlens/internal/analysis"
	"ivlens/internal/config"
	"ivlens/internal/interpret"
	"ivlens/internal/logging"
	"ivlens/internal/marketdata"
	"ivlens/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider *marketdata.Client
	Analyzer *analysis.Analyzer
	Chain    *interpret.Chain
	Store    store.PredictionStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Provider = marketdata.NewClient(cfg.MarketData.BaseURL, logger)

	app.Analyzer = analysis.NewAnalyzer(app.Provider, logger)
	app.Analyzer.SetWindow(cfg.Analysis.RollingWindow)

	app.Chain = interpret.NewChain(interpret.Config{
		OpenAIKey:        cfg.Credentials.OpenAI.APIKey,
		OpenAIModel:      cfg.Credentials.OpenAI.Model,
		SecondaryKey:     cfg.Credentials.Secondary.APIKey,
		SecondaryBaseURL: cfg.Credentials.Secondary.BaseURL,
		SecondaryModel:   cfg.Credentials.Secondary.Model,
	}, logger)

	dbPath := config.DefaultConfigDir() + "/ivlens.db"
	predictionStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, prediction commands unavailable")
	} else {
		app.Store = predictionStore
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "ivlens",
		Short: "IVLens - options volatility analytics CLI",
		Long: `IVLens analyzes implied and realized volatility for optionable stocks.

It compares quoted implied volatility against realized volatility estimates,
projects expected moves at standard confidence levels, and summarizes how a
symbol has actually moved over comparable horizons.

Use 'ivlens help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			} else {
				logging.SetInfoLevel()
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/ivlens)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addPredictionCommands(rootCmd, app)
	addServeCommand(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("IVLens v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}
