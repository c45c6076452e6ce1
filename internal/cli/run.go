package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"coinsentinel/internal/alert"
	"coinsentinel/internal/monitor"
	"coinsentinel/internal/notify"
)

// newRunCmd creates the command that starts the monitoring engine.
func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the feed poller and monitoring engine",
		Long: `Polls the configured social feed on an aligned cadence and spawns a
price monitoring task for every fresh post from a tracked author. Runs
until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Feed == nil {
				return fmt.Errorf("no feed credentials configured, run 'sentinel config path' and fill in credentials.toml")
			}
			if app.Watchlist == nil || app.Watchlist.Len() == 0 {
				return fmt.Errorf("watchlist is empty, add authors to %s", app.Config.Monitor.WatchlistPath)
			}

			reduced, _ := cmd.Flags().GetBool("reduced")
			quiet, _ := cmd.Flags().GetBool("quiet")
			if reduced {
				app.Config.Monitor.ReducedMode = true
			}
			if quiet {
				app.Config.Monitor.QuietMode = true
			}

			poller := monitor.NewPoller(
				pollerConfig(app),
				app.Feed,
				app.Market,
				app.Store,
				app.Watchlist,
				app.Config.TriggerRules(),
				buildAnnouncer(app),
				buildSMSSender(app),
				app.Logger,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return poller.Run(ctx)
		},
	}

	cmd.Flags().Bool("reduced", false, "reduced mode: fewer horizons, slower polling")
	cmd.Flags().Bool("quiet", false, "suppress voice and bell notifications")
	return cmd
}

// pollerConfig translates the file configuration into the poller's
// runtime configuration.
func pollerConfig(app *App) monitor.PollerConfig {
	cfg := app.Config

	horizons := make([]time.Duration, 0, len(cfg.Horizons()))
	red := make(map[time.Duration]float64)
	amber := make(map[time.Duration]float64)
	redBySec := cfg.Thresholds.RedBySeconds()
	amberBySec := cfg.Thresholds.AmberBySeconds()
	for _, sec := range cfg.Horizons() {
		h := time.Duration(sec) * time.Second
		horizons = append(horizons, h)
		red[h] = redBySec[sec]
		amber[h] = amberBySec[sec]
	}

	task := monitor.DefaultTaskConfig()
	task.Horizons = horizons
	task.Red = red
	task.Amber = amber
	task.Archive = cfg.Monitor.LogData && app.Store != nil
	task.ArchiveTradeWindow = !cfg.Monitor.ReducedMode

	return monitor.PollerConfig{
		ListID:  cfg.Monitor.ListID,
		Cadence: time.Duration(cfg.PollCadenceSeconds()) * time.Second,
		Quiet:   cfg.Monitor.QuietMode,
		Task:    task,
	}
}

// buildAnnouncer assembles the local notification channels.
func buildAnnouncer(app *App) alert.Announcer {
	var channels []notify.Announcer
	if app.Config.Notifications.VoiceEnabled {
		channels = append(channels, notify.NewVoiceAnnouncer())
	}
	channels = append(channels, notify.NewTerminalAnnouncer(app.Config.Notifications.BellEnabled))
	return notify.NewMultiAnnouncer(channels...)
}

// buildSMSSender returns the SMS channel, or nil when disabled or
// unconfigured.
func buildSMSSender(app *App) alert.SMSSender {
	creds := app.Config.Credentials.Twilio
	if !app.Config.Notifications.SMSEnabled || creds.AccountSID == "" {
		return nil
	}
	return notify.NewTwilioSender(notify.TwilioConfig{
		Enabled:    true,
		AccountSID: creds.AccountSID,
		AuthToken:  creds.AuthToken,
		From:       creds.From,
		To:         creds.To,
	})
}
