package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sentinel.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(symbol string, observedAt time.Time) *models.MonitoringRecord {
	return &models.MonitoringRecord{
		Symbol:        symbol,
		BaselinePrice: 0.00021345,
		Samples: []models.PriceSample{
			{OffsetSeconds: 30, Price: 0.00021480, GainPercent: 0.63},
			{OffsetSeconds: 60, Price: 0.00021502, GainPercent: 0.74},
		},
		Trades: &models.TradeWindow{
			Before: []models.Trade{{Timestamp: observedAt.Add(-time.Second), Price: 0.00021340, Amount: 10, Cost: 0.0021340}},
			After:  []models.Trade{{Timestamp: observedAt.Add(time.Second), Price: 0.00021400, Amount: 5, Cost: 0.0010700}},
		},
		OrderBooks: []models.OrderBook{
			{Symbol: symbol, Bids: [][2]float64{{0.0002134, 100}}, Asks: [][2]float64{{0.0002135, 90}}, Timestamp: observedAt},
		},
		Candles: []models.Candle{
			{Timestamp: observedAt.Truncate(time.Minute), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 42},
		},
		AlertHistory: models.AlertHistory{
			History: []models.AlertRecord{
				{TriggerLabel: "", Tier: models.TierNone},
				{TriggerLabel: "30s gain", Tier: models.TierRed},
			},
			Text: "tweet text",
			URL:  "https://t.co/x",
		},
		ObservedAt: observedAt,
	}
}

func TestSaveAndGetRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	observedAt := time.Date(2021, 6, 1, 12, 30, 15, 0, time.UTC)

	if err := s.SaveRecord(ctx, testRecord("NANO", observedAt)); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}

	got, err := s.GetRecord(ctx, observedAt, "NANO")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.Symbol != "NANO" || got.BaselinePrice != 0.00021345 {
		t.Errorf("record = %+v", got)
	}
	if len(got.Samples) != 2 || got.Samples[1].OffsetSeconds != 60 {
		t.Errorf("samples = %+v", got.Samples)
	}
	if got.Trades == nil || len(got.Trades.Before) != 1 || len(got.Trades.After) != 1 {
		t.Errorf("trade window = %+v", got.Trades)
	}
	if got.AlertHistory.History[1].Tier != models.TierRed {
		t.Errorf("alert history = %+v", got.AlertHistory)
	}
	if got.AlertHistory.Text != "tweet text" {
		t.Errorf("alert text = %q", got.AlertHistory.Text)
	}
}

func TestSaveRecord_NilTradeWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	observedAt := time.Date(2021, 6, 1, 12, 30, 15, 0, time.UTC)

	record := testRecord("IOTA", observedAt)
	record.Trades = nil
	if err := s.SaveRecord(ctx, record); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}

	got, err := s.GetRecord(ctx, observedAt, "IOTA")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.Trades != nil {
		t.Errorf("trade window = %+v, want nil", got.Trades)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRecord(context.Background(), time.Now(), "NANO")
	if !errors.Is(err, apperrors.ErrDataNotFound) {
		t.Errorf("GetRecord() error = %v, want ErrDataNotFound", err)
	}
}

func TestListRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, symbol := range []string{"NANO", "IOTA", "NANO"} {
		if err := s.SaveRecord(ctx, testRecord(symbol, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
	}

	all, err := s.ListRecords(ctx, RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	if !all[0].ObservedAt.After(all[2].ObservedAt) {
		t.Error("records not ordered newest first")
	}
	if all[0].MaxTier != models.TierRed || all[0].SampleCount != 2 {
		t.Errorf("summary = %+v", all[0])
	}

	nano, err := s.ListRecords(ctx, RecordFilter{Symbol: "NANO", Limit: 1})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(nano) != 1 || nano[0].Symbol != "NANO" {
		t.Errorf("filtered records = %+v", nano)
	}
}

func TestSaveRecord_DuplicateKeyRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	observedAt := time.Date(2021, 6, 1, 12, 30, 15, 0, time.UTC)

	if err := s.SaveRecord(ctx, testRecord("NANO", observedAt)); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}
	if err := s.SaveRecord(ctx, testRecord("NANO", observedAt)); err == nil {
		t.Error("SaveRecord() accepted a duplicate (observed_at, symbol) key")
	}
}
