package cli

import (
	"fmt"
	"strings"
	"time"
)

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPrice formats a price with enough precision for low-sat pairs.
func FormatPrice(price float64) string {
	if price >= 1 {
		return fmt.Sprintf("%.4f", price)
	}
	return fmt.Sprintf("%.8f", price)
}

// FormatTime formats a time in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format("15:04:05")
}

// FormatDateTime formats a datetime in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("02-Jan-2006 15:04:05")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
