// Package models defines the core data structures for the monitoring engine.
package models

import "time"

// Tier represents alert severity. The zero value is TierNone and the
// ordering TierNone < TierAmber < TierRed is relied on by the alert
// anti-spam check.
type Tier int

const (
	TierNone Tier = iota
	TierAmber
	TierRed
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierAmber:
		return "amber"
	case TierRed:
		return "red"
	default:
		return "none"
	}
}

// ParseTier parses a tier name. Unknown names map to TierNone.
func ParseTier(s string) Tier {
	switch s {
	case "amber":
		return TierAmber
	case "red":
		return TierRed
	default:
		return TierNone
	}
}

// MarshalText implements encoding.TextMarshaler so tiers serialize as
// their names in archival records.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	*t = ParseTier(string(b))
	return nil
}

// Trade represents a single executed market trade. Cost is price times
// amount as reported by the exchange. The struct is comparable so
// trade lists can be spliced by value.
type Trade struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Cost      float64   `json:"cost"`
}

// OrderBook is a depth snapshot. Levels are [price, quantity] pairs,
// best first.
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Bids      [][2]float64 `json:"bids"`
	Asks      [][2]float64 `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// FeedItem is one post from the social feed. Author is normalized to
// lowercase by the feed client before it reaches the core.
type FeedItem struct {
	Author   string
	Text     string
	PostedAt time.Time
	URLs     []string
}

// MonitoredEvent is the read-only record of a qualifying feed item.
// It is created by the poller and owned by the monitoring task
// spawned for it.
type MonitoredEvent struct {
	Symbol       string
	Author       string
	Text         string
	ObservedAt   time.Time
	ReferenceURL string
}

// AlertRecord is one entry in an alert's tier history.
type AlertRecord struct {
	TriggerLabel string `json:"trigger"`
	Tier         Tier   `json:"tier"`
}

// AlertHistory is the exported state of an alert: the full tier
// history plus the event text and URL it was raised for.
type AlertHistory struct {
	History []AlertRecord `json:"history"`
	Text    string        `json:"text,omitempty"`
	URL     string        `json:"url,omitempty"`
}

// PriceSample is one price observation taken at a monitoring horizon.
type PriceSample struct {
	OffsetSeconds int     `json:"offset_seconds"`
	Price         float64 `json:"price"`
	GainPercent   float64 `json:"gain_pct"`
}

// TradeWindow holds the trades immediately before and after a
// triggering event.
type TradeWindow struct {
	Before []Trade `json:"before"`
	After  []Trade `json:"after"`
}

// MonitoringRecord is the archival record assembled at the end of a
// monitoring task. Written once, never mutated.
type MonitoringRecord struct {
	Symbol        string        `json:"symbol"`
	BaselinePrice float64       `json:"baseline_price"`
	Samples       []PriceSample `json:"samples"`
	Trades        *TradeWindow  `json:"trades,omitempty"`
	OrderBooks    []OrderBook   `json:"order_books"`
	Candles       []Candle      `json:"candles"`
	AlertHistory  AlertHistory  `json:"alert_history"`
	ObservedAt    time.Time     `json:"observed_at"`
}
