package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"coinsentinel/internal/feed"
	"coinsentinel/internal/models"
	"coinsentinel/internal/trigger"
)

type fakeFeed struct {
	items []models.FeedItem
	err   error
}

func (f *fakeFeed) RecentItems(ctx context.Context, listID string) ([]models.FeedItem, error) {
	return f.items, f.err
}

func testPoller(t *testing.T, feedClient feed.Client, rules []trigger.Rule, announcer *recordingAnnouncer) *Poller {
	t.Helper()
	watchlist := feed.NewWatchlist([]feed.WatchlistEntry{
		{Symbol: "NANO", Author: "nano"},
		{Symbol: "IOTA", Author: "iota"},
		{Symbol: "DUP", Author: "both"},
		{Symbol: "DUP2", Author: "both"},
	})
	client := &fakeMarket{
		trades: [][]models.Trade{{{Timestamp: time.Now().UTC().Add(-time.Second), Price: 100, Amount: 1, Cost: 100}}},
		prices: []float64{100},
	}
	cfg := PollerConfig{
		ListID:  "crypto",
		Cadence: 15 * time.Second,
		Task:    fastTaskConfig([]time.Duration{10 * time.Millisecond}, 0.6, 0.4),
	}
	cfg.Task.Archive = false
	return NewPoller(cfg, feedClient, client, nil, watchlist, rules, announcer, nil, zerolog.Nop())
}

func TestProcessItemsSpawnsForFreshItems(t *testing.T) {
	now := time.Now().UTC()
	items := []models.FeedItem{
		{Author: "nano", Text: "launch", PostedAt: now.Add(-2 * time.Second)},
		{Author: "iota", Text: "news", PostedAt: now.Add(-10 * time.Second)},
	}
	p := testPoller(t, &fakeFeed{items: items}, nil, &recordingAnnouncer{})

	spawned := p.processItems(context.Background(), items, now)
	if spawned != 2 {
		t.Fatalf("spawned = %d, want 2", spawned)
	}
	if p.TaskCount() != 2 {
		t.Fatalf("TaskCount = %d, want 2", p.TaskCount())
	}
}

func TestProcessItemsStopsAtStaleItem(t *testing.T) {
	now := time.Now().UTC()
	// Items are newest first; everything at or past the cadence is
	// from an earlier window, including anything after it.
	items := []models.FeedItem{
		{Author: "nano", Text: "fresh", PostedAt: now.Add(-5 * time.Second)},
		{Author: "iota", Text: "stale", PostedAt: now.Add(-20 * time.Second)},
		{Author: "nano", Text: "also stale", PostedAt: now.Add(-40 * time.Second)},
	}
	p := testPoller(t, &fakeFeed{items: items}, nil, &recordingAnnouncer{})

	if spawned := p.processItems(context.Background(), items, now); spawned != 1 {
		t.Fatalf("spawned = %d, want 1", spawned)
	}
}

func TestProcessItemsSkipsUnresolvableAuthors(t *testing.T) {
	now := time.Now().UTC()
	items := []models.FeedItem{
		{Author: "unknown", Text: "who", PostedAt: now.Add(-time.Second)},
		{Author: "both", Text: "ambiguous", PostedAt: now.Add(-2 * time.Second)},
		{Author: "nano", Text: "ok", PostedAt: now.Add(-3 * time.Second)},
	}
	p := testPoller(t, &fakeFeed{items: items}, nil, &recordingAnnouncer{})

	if spawned := p.processItems(context.Background(), items, now); spawned != 1 {
		t.Fatalf("spawned = %d, want 1 (unknown and ambiguous authors skipped)", spawned)
	}
}

func TestProcessItemsRaisesTriggerAlertsBeforeSpawn(t *testing.T) {
	now := time.Now().UTC()
	rules := []trigger.Rule{
		{Author: "nano", Tier: models.TierRed, Message: "nano tweeted"},
	}
	items := []models.FeedItem{
		{Author: "nano", Text: "anything", PostedAt: now.Add(-time.Second)},
	}
	announcer := &recordingAnnouncer{}
	p := testPoller(t, &fakeFeed{items: items}, rules, announcer)

	if spawned := p.processItems(context.Background(), items, now); spawned != 1 {
		t.Fatalf("spawned = %d, want 1", spawned)
	}

	// The trigger alert fires synchronously during processing, before
	// the spawned task produces anything.
	announcer.mu.Lock()
	defer announcer.mu.Unlock()
	if len(announcer.messages) != 1 {
		t.Fatalf("announcements = %d, want 1", len(announcer.messages))
	}
	want := "nano tweeted for NANO\nTweet text: anything"
	if announcer.messages[0] != want {
		t.Errorf("announcement = %q, want %q", announcer.messages[0], want)
	}
}

// flakyFeed fails its first call and is healthy afterwards.
type flakyFeed struct {
	mu    sync.Mutex
	calls int
}

func (f *flakyFeed) RecentItems(ctx context.Context, listID string) ([]models.FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 1 {
		return nil, errors.New("feed unavailable")
	}
	return nil, nil
}

func (f *flakyFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPollerRestartsAfterFeedFailure(t *testing.T) {
	feedClient := &flakyFeed{}
	p := testPoller(t, feedClient, nil, &recordingAnnouncer{})
	p.cfg.Cadence = 5 * time.Millisecond
	p.cfg.Backoff = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if feedClient.callCount() < 2 {
		t.Fatalf("feed calls = %d, want at least 2 (loop must restart after a failure)", feedClient.callCount())
	}
}
