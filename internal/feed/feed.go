// Package feed provides social-feed access and author resolution.
package feed

import (
	"context"
	"os"

	"github.com/gocarina/gocsv"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

// Client is the feed interface the poller relies on. Items are
// returned newest first with authors normalized to lowercase.
type Client interface {
	RecentItems(ctx context.Context, listID string) ([]models.FeedItem, error)
}

// WatchlistEntry maps one tracked author to one market symbol.
type WatchlistEntry struct {
	Symbol string `csv:"symbol"`
	Author string `csv:"author"`
}

// Watchlist is the static author-to-symbol table, loaded once at
// startup and read-only thereafter.
type Watchlist struct {
	entries []WatchlistEntry
}

// LoadWatchlist reads the watchlist from a CSV file with symbol and
// author columns.
func LoadWatchlist(path string) (*Watchlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "opening watchlist %s", path)
	}
	defer f.Close()

	var entries []WatchlistEntry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, apperrors.Wrapf(err, "parsing watchlist %s", path)
	}
	return &Watchlist{entries: entries}, nil
}

// NewWatchlist builds a watchlist from entries directly.
func NewWatchlist(entries []WatchlistEntry) *Watchlist {
	return &Watchlist{entries: entries}
}

// Resolve maps an author to exactly one symbol. Zero or multiple
// matches return ErrAmbiguousAuthor; the caller must drop the item,
// never guess.
func (w *Watchlist) Resolve(author string) (string, error) {
	var symbols []string
	for _, e := range w.entries {
		if e.Author == author {
			symbols = append(symbols, e.Symbol)
		}
	}
	if len(symbols) != 1 {
		return "", apperrors.Wrapf(apperrors.ErrAmbiguousAuthor,
			"author %q matched symbols %v", author, symbols)
	}
	return symbols[0], nil
}

// Len returns the number of tracked authors.
func (w *Watchlist) Len() int {
	return len(w.entries)
}
