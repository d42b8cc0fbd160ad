package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	apperrors "ivlens/internal/errors"
	"ivlens/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, zerolog.Nop())
	c.retry.MaxAttempts = 1
	return c
}

func TestQuote(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"AAPL","price":185.5,"previousClose":184.2,"beta":1.25,"currency":"USD"}`))
	}))

	quote, err := c.Quote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Symbol != "AAPL" || quote.Price != 185.5 || quote.Beta != 1.25 {
		t.Errorf("unexpected quote: %+v", quote)
	}
}

func TestQuoteNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"No data found"}`, http.StatusNotFound)
	}))

	_, err := c.Quote(context.Background(), "NOPE")
	if !errors.Is(err, apperrors.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
	var perr *apperrors.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if perr.Status != http.StatusNotFound {
		t.Errorf("status = %d", perr.Status)
	}
}

func TestImpliedVol(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/iv/SPY" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"symbol":"SPY","iv":18.4,"atmStrike":500,"expirationDate":"2026-09-18","source":"options_chain","timestamp":"2026-08-30T10:00:00"}`))
	}))

	iv, err := c.ImpliedVol(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("ImpliedVol: %v", err)
	}
	if iv.IV != 18.4 || iv.Source != models.IVSourceOptionsChain {
		t.Errorf("unexpected iv: %+v", iv)
	}
	if iv.Timestamp.IsZero() {
		t.Error("timestamp should parse")
	}
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("period"); got != "3mo" {
			t.Errorf("period = %s", got)
		}
		w.Write([]byte(`{"symbol":"MSFT","data":[
			{"date":"2026-08-27T00:00:00","open":100,"high":102,"low":99,"close":101,"volume":1000},
			{"date":"2026-08-28T00:00:00","open":101,"high":103,"low":100,"close":102,"volume":1100}
		]}`))
	}))

	bars, err := c.History(context.Background(), "MSFT", "3mo", "1d")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 101 || bars[1].High != 103 {
		t.Errorf("unexpected bars: %+v", bars)
	}
}

func TestHistoryEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"MSFT","data":[]}`))
	}))

	_, err := c.History(context.Background(), "MSFT", "", "")
	if !errors.Is(err, apperrors.ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "apple" {
			t.Errorf("q = %s", got)
		}
		w.Write([]byte(`{"results":[{"symbol":"AAPL","shortname":"Apple Inc.","exchange":"NMS"}]}`))
	}))

	results, err := c.Search(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "AAPL" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestHealthDegraded(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"degraded"}`))
	}))
	if err := c.Health(context.Background()); !errors.Is(err, apperrors.ErrProviderDown) {
		t.Fatalf("expected ErrProviderDown, got %v", err)
	}
}

func TestBreakerTripsOnRepeatedFailures(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))

	for i := 0; i < 5; i++ {
		if _, err := c.Quote(context.Background(), "AAPL"); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}

	// Circuit is now open; the next call fails fast as a provider outage
	_, err := c.Quote(context.Background(), "AAPL")
	if !errors.Is(err, apperrors.ErrProviderDown) {
		t.Fatalf("expected ErrProviderDown, got %v", err)
	}

	stats := c.BreakerStats()
	if stats.TotalRejected == 0 {
		t.Error("expected rejected requests in breaker stats")
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"No data found"}`, http.StatusNotFound)
	}))

	for i := 0; i < 8; i++ {
		_, err := c.Quote(context.Background(), "NOPE")
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Fatalf("attempt %d: expected ErrSymbolNotFound, got %v", i, err)
		}
	}
}
