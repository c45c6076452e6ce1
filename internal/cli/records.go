package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"coinsentinel/internal/analysis"
	"coinsentinel/internal/models"
	"coinsentinel/internal/store"
)

// trendPeriod is the moving-average length used for record review,
// matching the candle lookback archived with each record.
const trendPeriod = 100

// newRecordsCmd creates commands for browsing archived monitoring
// records.
func newRecordsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Browse archived monitoring records",
	}
	cmd.AddCommand(newRecordsListCmd(app))
	cmd.AddCommand(newRecordsShowCmd(app))
	return cmd
}

func newRecordsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived monitoring records",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("record store unavailable")
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			limit, _ := cmd.Flags().GetInt("limit")
			sinceDays, _ := cmd.Flags().GetInt("days")

			filter := store.RecordFilter{Symbol: symbol, Limit: limit}
			if sinceDays > 0 {
				filter.Since = time.Now().UTC().AddDate(0, 0, -sinceDays)
			}

			summaries, err := app.Store.ListRecords(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summaries)
			}
			if len(summaries) == 0 {
				output.Dim("No archived records.")
				return nil
			}

			table := NewTable(output, "Observed At", "Symbol", "Baseline", "Max Tier", "Samples")
			for _, s := range summaries {
				table.AddRow(
					FormatDateTime(s.ObservedAt),
					s.Symbol,
					FormatPrice(s.BaselinePrice),
					output.TierTag(s.MaxTier),
					fmt.Sprintf("%d", s.SampleCount),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().Int("limit", 20, "maximum records to list")
	cmd.Flags().Int("days", 0, "only records from the last N days")
	return cmd
}

func newRecordsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <symbol> <observed-at>",
		Short: "Show one archived record in full",
		Long:  "Shows a single archived monitoring record. The observed-at key uses RFC 3339, as printed by 'records list --json'.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("record store unavailable")
			}

			observedAt, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("parsing observed-at %q: %w", args[1], err)
			}

			record, err := app.Store.GetRecord(cmd.Context(), observedAt, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(record)
			}

			output.Bold("%s observed at %s", record.Symbol, FormatDateTime(record.ObservedAt))
			output.Printf("  Baseline price: %s\n", FormatPrice(record.BaselinePrice))
			if record.AlertHistory.Text != "" {
				output.Printf("  Event text:     %s\n", TruncateString(record.AlertHistory.Text, 80))
			}
			output.Println()

			table := NewTable(output, "Offset", "Price", "Gain")
			for _, s := range record.Samples {
				table.AddRow(
					FormatDuration(time.Duration(s.OffsetSeconds)*time.Second),
					FormatPrice(s.Price),
					output.FormatGain(s.GainPercent),
				)
			}
			table.Render()
			output.Println()

			output.Bold("Alert History")
			for _, rec := range record.AlertHistory.History {
				if rec.Tier == models.TierNone && rec.TriggerLabel == "" {
					continue
				}
				output.Printf("  %s  %s\n", output.TierTag(rec.Tier), rec.TriggerLabel)
			}

			if trend, err := analysis.RecordTrendContext(record, trendPeriod); err == nil {
				output.Println()
				output.Bold("Trend Context")
				output.Printf("  SMA-%d:          %s\n", trend.Period, FormatPrice(trend.MovingAverage))
				output.Printf("  Baseline vs MA: %s\n", output.FormatGain(trend.BaselineVsMA))
				output.Printf("  Peak gain:      %s at %s\n", output.FormatGain(trend.PeakGain),
					FormatDuration(time.Duration(trend.PeakOffsetSecs)*time.Second))
			}
			return nil
		},
	}
}
