package utils

import (
	"testing"
	"time"
)

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want MarketStatus
	}{
		{"weekday regular session", time.Date(2025, 6, 3, 12, 0, 0, 0, NewYorkLocation), MarketOpen},
		{"open bell", time.Date(2025, 6, 3, 9, 30, 0, 0, NewYorkLocation), MarketOpen},
		{"just before open", time.Date(2025, 6, 3, 9, 29, 0, 0, NewYorkLocation), MarketPreOpen},
		{"pre-market start", time.Date(2025, 6, 3, 4, 0, 0, 0, NewYorkLocation), MarketPreOpen},
		{"close bell", time.Date(2025, 6, 3, 16, 0, 0, 0, NewYorkLocation), MarketAfterHours},
		{"late evening", time.Date(2025, 6, 3, 21, 0, 0, 0, NewYorkLocation), MarketClosed},
		{"saturday", time.Date(2025, 6, 7, 12, 0, 0, 0, NewYorkLocation), MarketClosed},
		{"sunday", time.Date(2025, 6, 8, 12, 0, 0, 0, NewYorkLocation), MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatusAt(tt.at); got != tt.want {
				t.Errorf("MarketStatusAt(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}
