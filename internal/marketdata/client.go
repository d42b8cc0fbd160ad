// Package marketdata provides the HTTP client for the quote/IV/history
// backend. The engine never talks to it directly; callers fetch here and
// hand the bars to the analysis layer.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "ivlens/internal/errors"
	"ivlens/internal/models"
	"ivlens/internal/resilience"
	"ivlens/pkg/utils"
)

// DefaultBaseURL is the local quote backend address.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the quote backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	retry   utils.RetryConfig
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
}

// NewClient creates a market data client. An empty baseURL falls back to
// the local backend default.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   utils.DefaultRetryConfig(),
		breaker: resilience.New("quote-backend", resilience.DefaultConfig()),
		logger:  logger.With().Str("component", "marketdata").Logger(),
	}
}

// BreakerStats exposes the backend circuit breaker counters.
func (c *Client) BreakerStats() resilience.Stats {
	return c.breaker.Stats()
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/health", &out); err != nil {
		return err
	}
	if out.Status != "healthy" {
		return apperrors.ErrProviderDown
	}
	return nil
}

// Quote fetches the current quote for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	var quote models.Quote
	path := "/quote/" + url.PathEscape(strings.ToUpper(symbol))
	if err := c.getJSON(ctx, path, &quote); err != nil {
		return models.Quote{}, err
	}
	return quote, nil
}

// ivResponse is the wire form of an IV quote; the timestamp arrives as an
// ISO string without a zone from the backend.
type ivResponse struct {
	Symbol     string  `json:"symbol"`
	IV         float64 `json:"iv"`
	ATMStrike  float64 `json:"atmStrike"`
	Expiration string  `json:"expirationDate"`
	Source     string  `json:"source"`
	Timestamp  string  `json:"timestamp"`
}

// ImpliedVol fetches the ATM implied volatility for a symbol.
func (c *Client) ImpliedVol(ctx context.Context, symbol string) (models.IVQuote, error) {
	var resp ivResponse
	path := "/iv/" + url.PathEscape(strings.ToUpper(symbol))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return models.IVQuote{}, err
	}
	iv := models.IVQuote{
		Symbol:     resp.Symbol,
		IV:         resp.IV,
		ATMStrike:  resp.ATMStrike,
		Expiration: resp.Expiration,
		Source:     models.IVSource(resp.Source),
		Timestamp:  parseTimestamp(resp.Timestamp),
	}
	return iv, nil
}

type historyResponse struct {
	Symbol string `json:"symbol"`
	Data   []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"data"`
}

// History fetches historical daily bars. Period and interval follow the
// backend's conventions ("1mo", "1y", ... / "1d", "1wk", ...).
func (c *Client) History(ctx context.Context, symbol, period, interval string) ([]models.Bar, error) {
	if period == "" {
		period = "1y"
	}
	if interval == "" {
		interval = "1d"
	}
	var resp historyResponse
	path := fmt.Sprintf("/history/%s?period=%s&interval=%s",
		url.PathEscape(strings.ToUpper(symbol)), url.QueryEscape(period), url.QueryEscape(interval))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.ErrNoHistory
	}
	bars := make([]models.Bar, 0, len(resp.Data))
	for _, d := range resp.Data {
		bars = append(bars, models.Bar{
			Date:   parseTimestamp(d.Date),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
		})
	}
	return bars, nil
}

type searchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// Search looks up symbols matching the query.
func (c *Client) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, "/search?q="+url.QueryEscape(q), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// getJSON fetches a backend path with retry and circuit breaking, then
// decodes the JSON response. A tripped breaker surfaces as ErrProviderDown
// without touching the network.
func (c *Client) getJSON(ctx context.Context, path string, dst interface{}) error {
	start := time.Now()
	var notFound error
	err := c.breaker.Execute(func() error {
		err := utils.Retry(ctx, c.retry, func() error {
			return c.doGet(ctx, path, dst)
		})
		// An unknown symbol is a valid backend answer, not an outage
		if errors.Is(err, apperrors.ErrSymbolNotFound) {
			notFound = err
			return nil
		}
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = fmt.Errorf("%s: %w", path, apperrors.ErrProviderDown)
	}
	if err == nil {
		err = notFound
	}
	event := c.logger.Debug().Str("path", path).Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("backend call failed")
		return err
	}
	event.Msg("backend call completed")
	return nil
}

func (c *Client) doGet(ctx context.Context, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewProviderError(path, 0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperrors.NewProviderError(path, resp.StatusCode, "read failed", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewProviderError(path, resp.StatusCode, "not found", apperrors.ErrSymbolNotFound)
	case resp.StatusCode != http.StatusOK:
		return apperrors.NewProviderError(path, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewProviderError(path, resp.StatusCode, "decode failed", err)
	}
	return nil
}

// parseTimestamp accepts the backend's ISO timestamps with or without a
// zone offset. Unparseable input yields the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
