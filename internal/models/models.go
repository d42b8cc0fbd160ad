// Package models provides domain models shared across the application.
package models

import (
	"time"
)

// Bar represents one period of OHLC price data. Close-only feeds produce
// degenerate bars where Open, High and Low are zero.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open,omitempty"`
	High   float64   `json:"high,omitempty"`
	Low    float64   `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// HasRange reports whether the bar carries a usable intraday high/low range.
func (b Bar) HasRange() bool {
	return b.High > 0 && b.Low > 0 && b.High > b.Low
}

// Quote represents a market quote from the data provider.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	PreviousClose    float64 `json:"previousClose"`
	Open             float64 `json:"open,omitempty"`
	DayHigh          float64 `json:"dayHigh,omitempty"`
	DayLow           float64 `json:"dayLow,omitempty"`
	Volume           int64   `json:"volume,omitempty"`
	MarketCap        int64   `json:"marketCap,omitempty"`
	ShortName        string  `json:"shortName,omitempty"`
	LongName         string  `json:"longName,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	Exchange         string  `json:"exchange,omitempty"`
	FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow,omitempty"`
	AverageVolume    int64   `json:"averageVolume,omitempty"`
	Beta             float64 `json:"beta,omitempty"`
}

// IVSource identifies how an implied volatility quote was obtained.
type IVSource string

const (
	IVSourceOptionsChain IVSource = "options_chain"
	IVSourceBetaEstimate IVSource = "estimated_from_beta"
	IVSourceFallback     IVSource = "fallback"
)

// IVQuote represents a quoted implied volatility for a symbol.
type IVQuote struct {
	Symbol     string    `json:"symbol"`
	IV         float64   `json:"iv"` // annualized, percent
	ATMStrike  float64   `json:"atmStrike,omitempty"`
	Expiration string    `json:"expirationDate,omitempty"`
	Source     IVSource  `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// SearchResult represents a symbol search match.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname,omitempty"`
	LongName  string `json:"longname,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	QuoteType string `json:"quoteType,omitempty"`
}
