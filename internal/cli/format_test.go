package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatPercentExamples(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{0, "0.00%"},
		{1.5, "+1.50%"},
		{-2.5, "-2.50%"},
		{100, "+100.00%"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatPercent(tc.value)
			if result != tc.expected {
				t.Errorf("FormatPercent(%f) = %s, want %s", tc.value, result, tc.expected)
			}
		})
	}
}

func TestFormatProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatPercent signs and suffixes correctly", prop.ForAll(
		func(value float64) bool {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return true
			}
			formatted := FormatPercent(value)
			if !strings.HasSuffix(formatted, "%") {
				return false
			}
			if value > 0 && !strings.HasPrefix(formatted, "+") {
				return false
			}
			if value < -0.005 && !strings.HasPrefix(formatted, "-") {
				return false
			}
			return true
		},
		gen.Float64Range(-100, 100),
	))

	properties.Property("TruncateString never exceeds the limit", prop.ForAll(
		func(s string, maxLen int) bool {
			truncated := TruncateString(s, maxLen)
			if len(truncated) > maxLen && len(s) > maxLen {
				return false
			}
			if len(s) <= maxLen && truncated != s {
				return false
			}
			return true
		},
		gen.AlphaString(),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		d        time.Duration
		expected string
	}{
		{30 * time.Second, "30s"},
		{150 * time.Second, "2m 30s"},
		{10 * time.Minute, "10m 0s"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatDuration(tc.d); got != tc.expected {
				t.Errorf("FormatDuration(%v) = %s, want %s", tc.d, got, tc.expected)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(1234.5); got != "1234.5000" {
		t.Errorf("FormatPrice(1234.5) = %s", got)
	}
	if got := FormatPrice(0.00001234); got != "0.00001234" {
		t.Errorf("FormatPrice(0.00001234) = %s", got)
	}
}
