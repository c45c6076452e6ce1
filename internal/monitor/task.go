// Package monitor implements the event feed poller and the per-event
// price monitoring tasks.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"coinsentinel/internal/alert"
	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/market"
	"coinsentinel/internal/models"
	"coinsentinel/internal/store"
)

// TaskConfig holds the monitoring schedule and thresholds for one
// task. Horizons must be strictly increasing; the threshold maps are
// keyed by horizon.
type TaskConfig struct {
	Horizons           []time.Duration
	Red                map[time.Duration]float64 // % gain per horizon
	Amber              map[time.Duration]float64 // % gain per horizon
	WindowLength       int                       // target trades either side of the event
	LongMALookback     int                       // extra candles fetched for downstream moving averages
	CandleInterval     string
	Archive            bool // persist a record when an alert fired
	ArchiveTradeWindow bool // include the stitched trade window (off in reduced mode)
}

// DefaultTaskConfig returns the standard monitoring schedule.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Horizons: []time.Duration{30 * time.Second, 60 * time.Second, 150 * time.Second, 300 * time.Second, 600 * time.Second},
		Red: map[time.Duration]float64{
			30 * time.Second: 0.6, 60 * time.Second: 1.1, 150 * time.Second: 1.8,
			300 * time.Second: 3.0, 600 * time.Second: 5.0,
		},
		Amber: map[time.Duration]float64{
			30 * time.Second: 0.4, 60 * time.Second: 0.9, 150 * time.Second: 1.4,
			300 * time.Second: 2.5, 600 * time.Second: 4.5,
		},
		WindowLength:       market.DefaultWindowLength,
		LongMALookback:     100,
		CandleInterval:     "1m",
		Archive:            true,
		ArchiveTradeWindow: true,
	}
}

// Task monitors one market after one event: it samples price, order
// book and trade state at each horizon, raises gain alerts, and
// optionally archives what it saw. Each task owns its event and alert
// exclusively and shares nothing mutable with other tasks.
type Task struct {
	cfg    TaskConfig
	client market.Client
	store  store.RecordStore
	alert  *alert.Alert
	event  models.MonitoredEvent
	logger zerolog.Logger
}

// NewTask creates a monitoring task for an event. The alert may be
// pre-seeded with trigger raises; records is optional and only used
// when archival is enabled.
func NewTask(cfg TaskConfig, client market.Client, records store.RecordStore, a *alert.Alert, event models.MonitoredEvent, logger zerolog.Logger) *Task {
	if cfg.WindowLength == 0 {
		cfg.WindowLength = market.DefaultWindowLength
	}
	return &Task{
		cfg:    cfg,
		client: client,
		store:  records,
		alert:  a,
		event:  event,
		logger: logger,
	}
}

// Run executes the monitoring protocol: baseline, one sample per
// horizon in order, then archival. Any error terminates only this
// task.
func (t *Task) Run(ctx context.Context) error {
	symbol := t.event.Symbol

	initTrades, err := t.client.FetchTrades(ctx, symbol)
	if err != nil {
		return err
	}
	if len(initTrades) == 0 {
		return apperrors.Wrapf(apperrors.ErrOutOfRange, "no trade history for %s", symbol)
	}

	observedAt := t.event.ObservedAt
	var baseline models.Trade
	if observedAt.IsZero() {
		baseline = initTrades[len(initTrades)-1]
		observedAt = time.Now().UTC()
	} else {
		baseline, err = market.LastTradeBefore(initTrades, observedAt)
		if err != nil {
			return err
		}
	}

	if elapsed := time.Since(observedAt); elapsed >= t.cfg.Horizons[0] {
		return apperrors.Wrapf(apperrors.ErrMonitorTooLate,
			"%s elapsed before monitoring %s (first horizon %s)", elapsed.Round(time.Second), symbol, t.cfg.Horizons[0])
	}

	initBook, err := t.client.FetchOrderBook(ctx, symbol)
	if err != nil {
		return err
	}
	books := []models.OrderBook{initBook}

	// tradesAfter accumulates the window of trades following the
	// event; nil once splicing has failed for good.
	tradesAfter := []models.Trade{baseline}
	samples := make([]models.PriceSample, 0, len(t.cfg.Horizons))

	for _, horizon := range t.cfg.Horizons {
		if wait := horizon - time.Since(observedAt); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if tradesAfter != nil && len(tradesAfter) < t.cfg.WindowLength {
			fresh, err := t.client.FetchTrades(ctx, symbol)
			if err != nil {
				return err
			}
			spliced, err := market.Splice(tradesAfter, fresh, t.cfg.WindowLength)
			if err != nil {
				// Too much volume between fetches; give up on the
				// window but keep monitoring price.
				t.logger.Warn().Err(err).Msg("trade splicing failed - there may be too many trades to log")
				tradesAfter = nil
			} else {
				tradesAfter = spliced
			}
		}

		book, err := t.client.FetchOrderBook(ctx, symbol)
		if err != nil {
			return err
		}
		books = append(books, book)

		price, err := t.client.FetchLastPrice(ctx, symbol)
		if err != nil {
			return err
		}
		gain := 100 * (price/baseline.Price - 1)
		samples = append(samples, models.PriceSample{
			OffsetSeconds: int(horizon.Seconds()),
			Price:         price,
			GainPercent:   gain,
		})

		t.logger.Info().Msgf("%gm monitoring of %s complete at %s. Gain = %.2f%%",
			horizon.Minutes(), symbol, time.Now().UTC().Format("15:04:05"), gain)

		label := fmt.Sprintf("%ds gain", int(horizon.Seconds()))
		if gain > t.cfg.Red[horizon] {
			t.alert.Red("large gain", label)
		} else if gain > t.cfg.Amber[horizon] {
			t.alert.Amber("medium gain", label)
		}
	}

	if !t.cfg.Archive || !t.alert.Fired() || t.store == nil {
		return nil
	}
	return t.archive(ctx, baseline, observedAt, initTrades, tradesAfter, books, samples)
}

// archive assembles and persists the monitoring record.
func (t *Task) archive(ctx context.Context, baseline models.Trade, observedAt time.Time,
	initTrades, tradesAfter []models.Trade, books []models.OrderBook, samples []models.PriceSample) error {

	last := t.cfg.Horizons[len(t.cfg.Horizons)-1]
	limit := int(last.Minutes()) + t.cfg.LongMALookback
	candles, err := t.client.FetchCandles(ctx, t.event.Symbol, t.cfg.CandleInterval, limit)
	if err != nil {
		return err
	}

	var window *models.TradeWindow
	if tradesAfter != nil && t.cfg.ArchiveTradeWindow {
		window = &models.TradeWindow{Before: initTrades, After: tradesAfter}
	}

	record := &models.MonitoringRecord{
		Symbol:        t.event.Symbol,
		BaselinePrice: baseline.Price,
		Samples:       samples,
		Trades:        window,
		OrderBooks:    books,
		Candles:       candles,
		AlertHistory:  t.alert.Export(),
		ObservedAt:    observedAt,
	}
	if err := t.store.SaveRecord(ctx, record); err != nil {
		return apperrors.Wrap(err, "archiving monitoring record")
	}
	t.logger.Info().Str("symbol", t.event.Symbol).Time("observed_at", observedAt).Msg("monitoring record archived")
	return nil
}
