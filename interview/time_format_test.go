package interview

import (
	"math"
	"testing"
)

func TestFormatClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{600, "10:00"},
		{-3, "00:00"},
		{math.NaN(), "00:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.seconds); got != tt.want {
			t.Fatalf("formatClock(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{125, "2:05"},
		{45, "0:45"},
		{3605, "60:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
