package cli

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"coinsentinel/internal/config"
	"coinsentinel/internal/feed"
	"coinsentinel/internal/logging"
	"coinsentinel/internal/market"
	"coinsentinel/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Market    market.Client
	Feed      feed.Client
	Store     store.RecordStore
	Watchlist *feed.Watchlist
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Market = market.NewBinanceClient(market.BinanceConfig{
		QuoteAsset: cfg.Monitor.QuoteAsset,
	})

	if cfg.Credentials.Twitter.BearerToken != "" {
		app.Feed = feed.NewTwitterClient(feed.TwitterConfig{
			BearerToken: cfg.Credentials.Twitter.BearerToken,
			ListOwner:   cfg.Credentials.Twitter.ListOwner,
		})
		logger.Debug().Msg("Twitter feed client initialized")
	}

	if watchlist, err := feed.LoadWatchlist(cfg.Monitor.WatchlistPath); err != nil {
		logger.Warn().Err(err).Msg("Failed to load watchlist")
	} else {
		app.Watchlist = watchlist
		logger.Debug().Int("authors", watchlist.Len()).Msg("Watchlist loaded")
	}

	if records, err := store.NewSQLiteStore(cfg.Monitor.DatabasePath); err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, archival will be unavailable")
	} else {
		app.Store = records
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Coin Sentinel - event-triggered crypto market monitor",
		Long: `Coin Sentinel watches a social feed for announcements from tracked
project accounts, then monitors the matching Binance market for unusual
price gains over the minutes that follow. Sharp gains raise tiered
alerts; interesting episodes are archived for later study.

Use 'sentinel help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/coinsentinel)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newRecordsCmd(app))
	rootCmd.AddCommand(newWatchlistCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Coin Sentinel v%s\n", Version)
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
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

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
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Monitor Configuration")
	output.Printf("  List ID:         %s\n", cfg.Monitor.ListID)
	output.Printf("  Quote Asset:     %s\n", cfg.Monitor.QuoteAsset)
	output.Printf("  Reduced Mode:    %v\n", cfg.Monitor.ReducedMode)
	output.Printf("  Quiet Mode:      %v\n", cfg.Monitor.QuietMode)
	output.Printf("  Data Logging:    %v\n", cfg.Monitor.LogData)
	output.Printf("  Poll Cadence:    %ds\n", cfg.PollCadenceSeconds())
	output.Printf("  Watchlist:       %s\n", cfg.Monitor.WatchlistPath)
	output.Printf("  Database:        %s\n", cfg.Monitor.DatabasePath)
	output.Println()

	output.Bold("Gain Thresholds")
	red := cfg.Thresholds.RedBySeconds()
	amber := cfg.Thresholds.AmberBySeconds()
	table := NewTable(output, "Horizon", "Amber", "Red")
	for _, h := range cfg.Horizons() {
		table.AddRow(
			FormatDuration(time.Duration(h)*time.Second),
			FormatPercent(amber[h]),
			FormatPercent(red[h]),
		)
	}
	table.Render()
	output.Println()

	output.Bold("Triggers")
	for _, rule := range cfg.Triggers {
		output.Printf("  [%s] author=%q phrases=%v: %s\n", rule.Tier, rule.Author, rule.Phrases, rule.Message)
	}
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Voice:           %v\n", cfg.Notifications.VoiceEnabled)
	output.Printf("  Bell:            %v\n", cfg.Notifications.BellEnabled)
	output.Printf("  SMS:             %v\n", cfg.Notifications.SMSEnabled)

	return nil
}

func newWatchlistCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist",
		Short: "Show the tracked author-to-symbol watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Watchlist == nil {
				output.Error("Watchlist not loaded (expected at %s)", app.Config.Monitor.WatchlistPath)
				return nil
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.Config.Monitor.WatchlistPath, "authors": strconv.Itoa(app.Watchlist.Len())})
			}
			output.Printf("Tracking %d authors from %s\n", app.Watchlist.Len(), app.Config.Monitor.WatchlistPath)
			return nil
		},
	}
}
