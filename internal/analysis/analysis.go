// Package analysis provides indicator calculations over archived
// candle history, used when reviewing monitoring records.
package analysis

import (
	"errors"
	"fmt"

	"coinsentinel/internal/models"
)

var (
	ErrInvalidPeriod    = errors.New("invalid indicator period")
	ErrInsufficientData = errors.New("insufficient candle data")
)

// Indicator defines the interface for indicators calculated over a
// candle series.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

// SMA calculates Simple Moving Average.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

func (s *SMA) Calculate(candles []models.Candle) ([]float64, error) {
	if s.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < s.period {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(candles))
	closes := closePrices(candles)

	for i := s.period - 1; i < len(candles); i++ {
		result[i] = mean(closes[i-s.period+1 : i+1])
	}

	return result, nil
}

// EMA calculates Exponential Moving Average.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

func (e *EMA) Period() int {
	return e.period
}

func (e *EMA) Calculate(candles []models.Candle) ([]float64, error) {
	if e.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < e.period {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(candles))
	closes := closePrices(candles)
	multiplier := 2.0 / float64(e.period+1)

	// First EMA is SMA
	result[e.period-1] = mean(closes[:e.period])

	for i := e.period; i < len(candles); i++ {
		result[i] = (closes[i]-result[i-1])*multiplier + result[i-1]
	}

	return result, nil
}

// TrendContext summarizes where a monitoring episode sat relative to
// the longer price trend of its market.
type TrendContext struct {
	Period         int     `json:"period"`
	MovingAverage  float64 `json:"moving_average"`
	BaselineVsMA   float64 `json:"baseline_vs_ma_percent"`
	PeakGain       float64 `json:"peak_gain_percent"`
	PeakOffsetSecs int     `json:"peak_offset_seconds"`
}

// RecordTrendContext computes the trend context for an archived
// record: the moving average over its candle history and the episode's
// peak gain. The record must carry at least period candles.
func RecordTrendContext(record *models.MonitoringRecord, period int) (*TrendContext, error) {
	sma := NewSMA(period)
	values, err := sma.Calculate(record.Candles)
	if err != nil {
		return nil, err
	}
	ma := values[len(values)-1]

	ctx := &TrendContext{
		Period:        period,
		MovingAverage: ma,
	}
	if ma > 0 {
		ctx.BaselineVsMA = 100 * (record.BaselinePrice/ma - 1)
	}
	for _, sample := range record.Samples {
		if sample.GainPercent > ctx.PeakGain {
			ctx.PeakGain = sample.GainPercent
			ctx.PeakOffsetSecs = sample.OffsetSeconds
		}
	}
	return ctx, nil
}

func closePrices(candles []models.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
