// Package alert implements the per-event alert state machine: tier
// history, anti-spam suppression and notification dispatch.
package alert

import (
	"fmt"

	"github.com/rs/zerolog"

	"coinsentinel/internal/models"
)

// Announcer is the loud local notification channel (voice, terminal
// bell). It is gated by quiet mode and the tier-increase check.
type Announcer interface {
	Announce(message string)
}

// SMSSender delivers red alerts out of band.
type SMSSender interface {
	Send(body string) error
}

// Config holds the fixed context an alert is raised in.
type Config struct {
	Text      string // event text, appended to every alert message
	URL       string // reference URL, appended to SMS bodies
	Quiet     bool   // suppress the announcer, never logging or history
	Announcer Announcer
	SMS       SMSSender
	Logger    zerolog.Logger
}

// Alert tracks the tier history for a single monitored event. It is
// owned by one monitoring task and is not safe for concurrent use.
// None of its methods fail the caller: delivery errors are logged and
// swallowed.
type Alert struct {
	symbol  string
	cfg     Config
	current models.Tier
	history []models.AlertRecord
}

// New creates an alert for a symbol. The history starts with a
// sentinel none-tier record so the tier-increase check always has two
// entries to compare.
func New(symbol string, cfg Config) *Alert {
	return &Alert{
		symbol:  symbol,
		cfg:     cfg,
		history: []models.AlertRecord{{TriggerLabel: "", Tier: models.TierNone}},
	}
}

// Amber raises an amber alert.
func (a *Alert) Amber(message, trigger string) {
	a.Raise(message, models.TierAmber, trigger)
}

// Red raises a red alert.
func (a *Alert) Red(message, trigger string) {
	a.Raise(message, models.TierRed, trigger)
}

// Raise appends a record at the given tier, logs the formatted
// message, and dispatches the loud channels when the tier has held or
// escalated. A missing message degrades to "<tier> alert". Raising at
// TierNone is ignored.
func (a *Alert) Raise(message string, tier models.Tier, trigger string) {
	if tier == models.TierNone {
		return
	}

	a.current = tier
	a.history = append(a.history, models.AlertRecord{TriggerLabel: trigger, Tier: tier})

	if message == "" {
		message = fmt.Sprintf("%s alert", tier)
	}
	full := fmt.Sprintf("%s for %s", message, a.symbol)
	if a.cfg.Text != "" {
		full += fmt.Sprintf("\nTweet text: %s", a.cfg.Text)
	}

	// History and logging are never suppressed, only the loud channels.
	a.cfg.Logger.Info().Str("tier", tier.String()).Str("trigger", trigger).Msg(full)

	increased := a.tierIncreased()
	if !a.cfg.Quiet && increased && a.cfg.Announcer != nil {
		a.cfg.Announcer.Announce(full)
	}
	if tier == models.TierRed && a.cfg.SMS != nil && increased {
		body := full
		if a.cfg.URL != "" {
			body += fmt.Sprintf(" %s", a.cfg.URL)
		}
		if err := a.cfg.SMS.Send(body); err != nil {
			a.cfg.Logger.Error().Err(err).Msg("sms delivery failed")
		}
	}
}

// tierIncreased reports whether the newest tier held or escalated
// relative to the record immediately before it. A de-escalating tier
// stays silent on the loud channels while a situation cools off.
func (a *Alert) tierIncreased() bool {
	n := len(a.history)
	return a.history[n-1].Tier >= a.history[n-2].Tier
}

// CurrentTier returns the tier of the most recent raise, or TierNone
// if nothing has fired.
func (a *Alert) CurrentTier() models.Tier {
	return a.current
}

// Fired reports whether at least one alert has been raised.
func (a *Alert) Fired() bool {
	return a.current != models.TierNone
}

// Export returns the full tier history plus the event text and URL
// for archival. It is side-effect-free.
func (a *Alert) Export() models.AlertHistory {
	history := make([]models.AlertRecord, len(a.history))
	copy(history, a.history)
	return models.AlertHistory{
		History: history,
		Text:    a.cfg.Text,
		URL:     a.cfg.URL,
	}
}
