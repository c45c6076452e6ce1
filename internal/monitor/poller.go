package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"coinsentinel/internal/alert"
	"coinsentinel/internal/feed"
	"coinsentinel/internal/logging"
	"coinsentinel/internal/market"
	"coinsentinel/internal/models"
	"coinsentinel/internal/store"
	"coinsentinel/internal/trigger"
	"coinsentinel/pkg/utils"
)

// PollerConfig controls the feed polling loop.
type PollerConfig struct {
	ListID  string
	Cadence time.Duration // poll interval, also the freshness window
	Backoff time.Duration // restart delay after a loop failure
	Quiet   bool          // suppress loud notifications on spawned alerts
	Task    TaskConfig
}

// Poller drives the whole engine: it polls the event feed on an
// aligned cadence, matches fresh items against the trigger rules, and
// spawns one monitoring task per fresh resolvable item.
type Poller struct {
	cfg       PollerConfig
	feed      feed.Client
	market    market.Client
	store     store.RecordStore
	watchlist *feed.Watchlist
	rules     []trigger.Rule
	announcer alert.Announcer
	sms       alert.SMSSender
	logger    zerolog.Logger

	taskCount atomic.Uint64
}

// NewPoller wires a poller. The store, announcer and sms sender may
// be nil when archival or the matching notification channel is
// disabled.
func NewPoller(cfg PollerConfig, feedClient feed.Client, marketClient market.Client,
	records store.RecordStore, watchlist *feed.Watchlist, rules []trigger.Rule,
	announcer alert.Announcer, sms alert.SMSSender, logger zerolog.Logger) *Poller {

	if cfg.Backoff == 0 {
		cfg.Backoff = 60 * time.Second
	}
	return &Poller{
		cfg:       cfg,
		feed:      feedClient,
		market:    marketClient,
		store:     records,
		watchlist: watchlist,
		rules:     rules,
		announcer: announcer,
		sms:       sms,
		logger:    logger,
	}
}

// Run polls until the context is cancelled. A failure inside the poll
// loop is logged and the loop restarts after the backoff delay; the
// poller itself never gives up.
func (p *Poller) Run(ctx context.Context) error {
	p.logStartup()
	for {
		err := p.poll(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		p.logger.Error().Caller().Err(err).Msg("monitor loop failed")
		p.logger.Info().Msgf("Attempting to restart after %d seconds", int(p.cfg.Backoff.Seconds()))
		select {
		case <-time.After(p.cfg.Backoff):
		case <-ctx.Done():
			return nil
		}
		p.logger.Info().Msg("Restarting main monitor")
	}
}

func (p *Poller) logStartup() {
	mode := "full"
	if len(p.cfg.Task.Horizons) < 5 {
		mode = "reduced"
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	p.logger.Info().Msgf("Main monitor started (%s mode with data logging %s and sms %s)",
		mode, onOff(p.cfg.Task.Archive), onOff(p.sms != nil))
	p.logger.Info().Msgf("Refreshing feed every %ds", int(p.cfg.Cadence.Seconds()))
}

// poll runs the aligned wake loop. It returns on context cancellation
// or on a feed error, leaving restart policy to Run.
func (p *Poller) poll(ctx context.Context) error {
	for {
		if err := utils.SleepUntilAligned(ctx, p.cfg.Cadence); err != nil {
			return err
		}
		items, err := p.feed.RecentItems(ctx, p.cfg.ListID)
		if err != nil {
			return err
		}
		p.processItems(ctx, items, time.Now().UTC())
	}
}

// processItems scans items newest first and spawns a monitoring task
// for every item posted within the last poll window. It returns the
// number of tasks spawned.
func (p *Poller) processItems(ctx context.Context, items []models.FeedItem, now time.Time) int {
	spawned := 0
	for _, item := range items {
		elapsed := now.Sub(item.PostedAt)
		if elapsed >= p.cfg.Cadence {
			// Items are newest first, so everything from here back was
			// seen on an earlier wake.
			break
		}
		if elapsed < 0 {
			continue
		}
		symbol, err := p.watchlist.Resolve(item.Author)
		if err != nil {
			p.logger.Error().Err(err).Str("author", item.Author).Msg("cannot resolve feed item to a symbol")
			continue
		}

		event := models.MonitoredEvent{
			Symbol:       symbol,
			Author:       item.Author,
			Text:         item.Text,
			ObservedAt:   item.PostedAt,
			ReferenceURL: lastURL(item.URLs),
		}

		id := p.taskCount.Add(1)
		taskLogger := logging.WithSymbol(logging.WithTask(p.logger, id), symbol)
		a := alert.New(symbol, alert.Config{
			Text:      item.Text,
			URL:       event.ReferenceURL,
			Quiet:     p.cfg.Quiet,
			Announcer: p.announcer,
			SMS:       p.sms,
			Logger:    taskLogger,
		})
		for _, rule := range trigger.Match(item.Author, item.Text, p.rules) {
			a.Raise(rule.Message, rule.Tier, rule.Message)
		}

		task := NewTask(p.cfg.Task, p.market, p.store, a, event, taskLogger)
		taskLogger.Info().Str("author", item.Author).Msg("spawning monitoring task")
		go p.runTask(ctx, task, taskLogger)
		spawned++
	}
	return spawned
}

// runTask shields the poller from task failures: a panicking or
// erroring task dies alone.
func (p *Poller) runTask(ctx context.Context, task *Task, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("monitoring task panicked")
		}
	}()
	if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("monitoring task failed")
	}
}

// TaskCount reports how many tasks have been spawned since startup.
func (p *Poller) TaskCount() uint64 {
	return p.taskCount.Load()
}

func lastURL(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[len(urls)-1]
}
