package models

import "time"

// Prediction is the record a user logs from the dashboard after reviewing
// the volatility analysis. The engine only supplies the numbers; this record
// is caller state persisted by the store.
type Prediction struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`      // spot at time of logging
	UserIV      float64   `json:"userIv"`     // IV chosen by the user, percent
	MarketIV    float64   `json:"marketIv"`   // quoted IV at time of logging
	HorizonDays int       `json:"horizonDays"`
	Method      string    `json:"method"`     // estimation method the user based the call on
	Adjustment  float64   `json:"adjustment"` // user adjustment applied to the method value, percent points
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
