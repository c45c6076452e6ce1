package market

import (
	"errors"
	"reflect"
	"testing"
	"time"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

// tradeSeq builds a deterministic trade sequence; prices double as
// identifiers so overlapping fetches share trades by value.
func tradeSeq(prices ...float64) []models.Trade {
	base := time.Date(2018, 4, 17, 23, 43, 0, 0, time.UTC)
	trades := make([]models.Trade, 0, len(prices))
	for i, p := range prices {
		trades = append(trades, models.Trade{
			Timestamp: base.Add(time.Duration(p) * time.Second),
			Price:     p,
			Amount:    1,
			Cost:      p,
		})
		_ = i
	}
	return trades
}

func TestSplice_Truncated(t *testing.T) {
	first := tradeSeq(1, 2, 3, 4)
	second := tradeSeq(3, 4, 5, 6, 7, 8, 9, 10)

	got, err := Splice(first, second, 7)
	if err != nil {
		t.Fatalf("Splice() error = %v", err)
	}
	want := tradeSeq(1, 2, 3, 4, 5, 6, 7)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Splice() = %v, want %v", got, want)
	}
}

func TestSplice_DefaultTargetExtendsAsFarAsAvailable(t *testing.T) {
	first := tradeSeq(1, 2, 3, 4)
	second := tradeSeq(3, 4, 5, 6, 7, 8, 9, 10)

	got, err := Splice(first, second, DefaultWindowLength)
	if err != nil {
		t.Fatalf("Splice() error = %v", err)
	}
	want := tradeSeq(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Splice() = %v, want %v", got, want)
	}
}

func TestSplice_FirstAlreadyAtTarget(t *testing.T) {
	_, err := Splice(tradeSeq(1, 2, 3), tradeSeq(5), 2)
	if !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("Splice() error = %v, want ErrOutOfRange", err)
	}
}

func TestSplice_NoOverlap(t *testing.T) {
	_, err := Splice(tradeSeq(1, 2, 3), tradeSeq(5), DefaultWindowLength)
	if !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("Splice() error = %v, want ErrOutOfRange", err)
	}
}

func TestSplice_EmptyFirst(t *testing.T) {
	_, err := Splice(nil, tradeSeq(5), DefaultWindowLength)
	if !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("Splice() error = %v, want ErrOutOfRange", err)
	}
}

func TestLastTradeBefore(t *testing.T) {
	t0 := time.Date(2018, 4, 17, 23, 43, 49, 0, time.UTC)
	t1 := time.Date(2018, 4, 17, 23, 43, 57, 0, time.UTC)
	trades := []models.Trade{
		{Timestamp: t0, Price: 1},
		{Timestamp: t1, Price: 2},
	}

	tests := []struct {
		name    string
		at      time.Time
		want    float64
		wantErr bool
	}{
		{"between trades", t0.Add(3 * time.Second), 1, false},
		{"after all trades", t1.Add(10 * time.Second), 2, false},
		{"before all trades", t0.Add(-5 * time.Second), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LastTradeBefore(trades, tt.at)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrOutOfRange) {
					t.Errorf("LastTradeBefore() error = %v, want ErrOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LastTradeBefore() error = %v", err)
			}
			if got.Price != tt.want {
				t.Errorf("LastTradeBefore() = trade price %v, want %v", got.Price, tt.want)
			}
		})
	}
}

func TestPair(t *testing.T) {
	c := NewBinanceClient(DefaultBinanceConfig())
	if got := c.Pair("nano"); got != "NANOBTC" {
		t.Errorf("Pair() = %q, want NANOBTC", got)
	}
}
