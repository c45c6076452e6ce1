package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "coinsentinel/internal/errors"
)

func testWatchlist() *Watchlist {
	return NewWatchlist([]WatchlistEntry{
		{Symbol: "NANO", Author: "nano"},
		{Symbol: "IOTA", Author: "iota"},
		{Symbol: "XLM", Author: "stellarorg"},
		{Symbol: "DUP", Author: "doubled"},
		{Symbol: "DUP2", Author: "doubled"},
	})
}

func TestResolve_ExactlyOne(t *testing.T) {
	symbol, err := testWatchlist().Resolve("stellarorg")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if symbol != "XLM" {
		t.Errorf("Resolve() = %q, want XLM", symbol)
	}
}

func TestResolve_UnknownAuthor(t *testing.T) {
	_, err := testWatchlist().Resolve("whoami")
	if !errors.Is(err, apperrors.ErrAmbiguousAuthor) {
		t.Errorf("Resolve() error = %v, want ErrAmbiguousAuthor", err)
	}
}

func TestResolve_MultipleMatchesNeverGuesses(t *testing.T) {
	_, err := testWatchlist().Resolve("doubled")
	if !errors.Is(err, apperrors.ErrAmbiguousAuthor) {
		t.Errorf("Resolve() error = %v, want ErrAmbiguousAuthor", err)
	}
}

func TestLoadWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.csv")
	csv := "symbol,author\nNANO,nano\nIOTA,iota\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	wl, err := LoadWatchlist(path)
	if err != nil {
		t.Fatalf("LoadWatchlist() error = %v", err)
	}
	if wl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", wl.Len())
	}
	if symbol, _ := wl.Resolve("iota"); symbol != "IOTA" {
		t.Errorf("Resolve(iota) = %q, want IOTA", symbol)
	}
}

func TestRecentItems_ParsesAndLowercases(t *testing.T) {
	payload := `[
		{
			"created_at": "Sun Mar 25 16:40:59 +0000 2018",
			"text": "NANO is now listed",
			"user": {"screen_name": "Nano"},
			"entities": {"urls": [{"url": "https://t.co/x", "expanded_url": "https://nano.org"}]}
		},
		{
			"created_at": "Sun Mar 25 16:39:00 +0000 2018",
			"text": "older",
			"user": {"screen_name": "iota"},
			"entities": {"urls": []}
		}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("slug"); got != "binance-coins" {
			t.Errorf("slug = %q", got)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewTwitterClient(TwitterConfig{
		BaseURL:     srv.URL,
		BearerToken: "token",
		ListOwner:   "tundra_beats",
	})

	items, err := c.RecentItems(context.Background(), "binance-coins")
	if err != nil {
		t.Fatalf("RecentItems() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Author != "nano" {
		t.Errorf("author = %q, want lowercased nano", items[0].Author)
	}
	want := time.Date(2018, 3, 25, 16, 40, 59, 0, time.UTC)
	if !items[0].PostedAt.Equal(want) {
		t.Errorf("posted at = %v, want %v", items[0].PostedAt, want)
	}
	if len(items[0].URLs) != 1 || items[0].URLs[0] != "https://t.co/x" {
		t.Errorf("urls = %v", items[0].URLs)
	}
}

func TestRecentItems_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"code":88}]}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewTwitterClient(TwitterConfig{BaseURL: srv.URL, BearerToken: "t", ListOwner: "o"})
	_, err := c.RecentItems(context.Background(), "list")
	if err == nil {
		t.Fatal("RecentItems() error = nil, want feed error")
	}
	var feedErr *apperrors.FeedError
	if !errors.As(err, &feedErr) {
		t.Errorf("error type = %T, want *FeedError", err)
	}
}
