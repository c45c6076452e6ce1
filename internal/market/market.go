// Package market provides exchange access and trade-history utilities.
package market

import (
	"context"
	"time"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

// DefaultWindowLength is the target length for a stitched trade
// window: 100 trades either side of the triggering event.
const DefaultWindowLength = 100

// Client is the exchange interface the monitoring engine relies on.
// Implementations must be safe for concurrent use by multiple
// monitoring tasks; all calls are reads.
type Client interface {
	// FetchTrades returns the most recent trades for a symbol,
	// oldest first. The page bound is exchange-defined.
	FetchTrades(ctx context.Context, symbol string) ([]models.Trade, error)

	// FetchOrderBook returns a depth snapshot.
	FetchOrderBook(ctx context.Context, symbol string) (models.OrderBook, error)

	// FetchLastPrice returns the current last-trade price.
	FetchLastPrice(ctx context.Context, symbol string) (float64, error)

	// FetchCandles returns up to limit OHLCV candles at the given
	// interval, oldest first.
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// LastTradeBefore finds the most recent trade strictly before t.
// Returns ErrOutOfRange when every trade in the list is at or after t.
func LastTradeBefore(trades []models.Trade, t time.Time) (models.Trade, error) {
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Timestamp.Before(t) {
			return trades[i], nil
		}
	}
	var earliest time.Time
	if len(trades) > 0 {
		earliest = trades[0].Timestamp
	}
	return models.Trade{}, apperrors.Wrapf(apperrors.ErrOutOfRange,
		"no trade before %s (earliest %s)", t, earliest)
}

// Splice stitches two successive trade fetches into one continuous,
// duplicate-free sequence of at most targetLen trades.
//
// The last trade of first must occur (by value) somewhere in second;
// the portion of second after that occurrence is appended. Returns
// ErrOutOfRange when first is already at or over targetLen, or when
// the fetches do not overlap because too much volume traded between
// them.
func Splice(first, second []models.Trade, targetLen int) ([]models.Trade, error) {
	if len(first) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfRange, "first fetch is empty")
	}
	if len(first) >= targetLen {
		return nil, apperrors.Wrapf(apperrors.ErrOutOfRange,
			"first fetch already holds %d trades (target %d)", len(first), targetLen)
	}

	idx := -1
	last := first[len(first)-1]
	for i, trade := range second {
		if trade == last {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfRange, "trade fetches do not overlap")
	}

	tail := second[idx+1:]
	if room := targetLen - len(first); len(tail) > room {
		tail = tail[:room]
	}

	spliced := make([]models.Trade, 0, len(first)+len(tail))
	spliced = append(spliced, first...)
	spliced = append(spliced, tail...)
	return spliced, nil
}
