package utils

import (
	"time"
)

// MarketStatus describes the current US equity market session.
type MarketStatus string

const (
	MarketClosed     MarketStatus = "closed"
	MarketPreOpen    MarketStatus = "pre-market"
	MarketOpen       MarketStatus = "open"
	MarketAfterHours MarketStatus = "after-hours"
)

// NewYorkLocation is the timezone for US equity markets.
var NewYorkLocation *time.Location

func init() {
	var err error
	NewYorkLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to fixed EST
		NewYorkLocation = time.FixedZone("EST", -5*60*60)
	}
}

// GetMarketStatus returns the current US market session.
func GetMarketStatus() MarketStatus {
	return MarketStatusAt(time.Now())
}

// MarketStatusAt returns the US market session at the given instant.
// Exchange holidays are not tracked.
func MarketStatusAt(t time.Time) MarketStatus {
	now := t.In(NewYorkLocation)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return MarketClosed
	}

	minutes := now.Hour()*60 + now.Minute()

	// Pre-market: 4:00 - 9:30
	if minutes >= 240 && minutes < 570 {
		return MarketPreOpen
	}
	// Regular session: 9:30 - 16:00
	if minutes >= 570 && minutes < 960 {
		return MarketOpen
	}
	// After hours: 16:00 - 20:00
	if minutes >= 960 && minutes < 1200 {
		return MarketAfterHours
	}
	return MarketClosed
}
