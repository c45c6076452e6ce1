// Package utils provides small time helpers shared across the
// monitoring engine.
package utils

import (
	"context"
	"time"
)

// NextAlignedWake returns the duration until the next wall-clock
// boundary of the given cadence, so a 15s cadence wakes at :00, :15,
// :30 and :45 regardless of when polling started.
func NextAlignedWake(now time.Time, cadence time.Duration) time.Duration {
	if cadence <= 0 {
		return 0
	}
	return cadence - time.Duration(now.UnixNano())%cadence
}

// SleepUntilAligned blocks until the next wall-clock boundary of the
// given cadence, or until the context is cancelled.
func SleepUntilAligned(ctx context.Context, cadence time.Duration) error {
	timer := time.NewTimer(NextAlignedWake(time.Now(), cadence))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Elapsed returns the seconds from t0 to t1, negative when t1 is
// earlier.
func Elapsed(t0, t1 time.Time) float64 {
	return t1.Sub(t0).Seconds()
}
