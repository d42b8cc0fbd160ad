// Package integration provides end-to-end tests wiring the market data
// client, the analysis engine, the interpretation chain and the store
// together against a fake quote backend.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ivlens/internal/analysis"
	"ivlens/internal/interpret"
	"ivlens/internal/marketdata"
	"ivlens/internal/models"
	"ivlens/internal/store"
)

// fakeBackend mimics the quote backend's JSON API for one symbol.
func fakeBackend(t *testing.T, symbol string, bars int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/quote/"+symbol, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"symbol":        symbol,
			"price":         187.3,
			"previousClose": 185.1,
			"shortName":     "Test Corp",
			"beta":          1.1,
		})
	})
	mux.HandleFunc("/iv/"+symbol, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"symbol":    symbol,
			"iv":        31.4,
			"source":    "options_chain",
			"timestamp": "2025-06-02T15:30:00",
		})
	})
	mux.HandleFunc("/history/"+symbol, func(w http.ResponseWriter, r *http.Request) {
		data := make([]map[string]interface{}, 0, bars)
		base := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
		price := 150.0
		for i := 0; i < bars; i++ {
			if i%3 == 0 {
				price *= 1.012
			} else {
				price *= 0.9965
			}
			data = append(data, map[string]interface{}{
				"date":   base.AddDate(0, 0, i).Format("2006-01-02"),
				"open":   price * 0.998,
				"high":   price * 1.011,
				"low":    price * 0.99,
				"close":  price,
				"volume": 2_000_000,
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"symbol": symbol,
			"data":   data,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"No data found"}`, http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeInterpretAndLogPrediction(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend := fakeBackend(t, "ACME", 260)
	client := marketdata.NewClient(backend.URL, zerolog.Nop())

	if err := client.Health(ctx); err != nil {
		t.Fatalf("backend health: %v", err)
	}

	analyzer := analysis.NewAnalyzer(client, zerolog.Nop())
	report, err := analyzer.Analyze(ctx, "ACME", 30)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Symbol != "ACME" {
		t.Errorf("symbol = %s", report.Symbol)
	}
	if report.IV == nil || report.IV.IV != 31.4 {
		t.Fatalf("expected quoted IV 31.4, got %+v", report.IV)
	}
	if len(report.Methods) == 0 {
		t.Fatal("expected method estimates")
	}
	var haveEstimate bool
	for _, mv := range report.Methods {
		if mv.Estimate != nil && mv.Estimate.Value > 0 {
			haveEstimate = true
		}
	}
	if !haveEstimate {
		t.Error("expected at least one positive realized estimate")
	}
	if report.ExpectedMove == nil {
		t.Fatal("expected move projection")
	}
	if report.Rank == nil {
		t.Fatal("expected IV rank with a full year of history")
	}
	if report.Distribution == nil || report.Distribution.Samples == 0 {
		t.Fatal("expected move distribution")
	}

	// Interpretation falls back to the local template without credentials
	chain := interpret.NewChain(interpret.Config{}, zerolog.Nop())
	result, err := chain.Generate(ctx, report)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Provider != "local" {
		t.Errorf("provider = %s", result.Provider)
	}
	if !strings.Contains(result.Text, "ACME") {
		t.Error("interpretation should mention the symbol")
	}

	// Log the resulting prediction
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ivlens.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	p := &models.Prediction{
		Symbol:      report.Symbol,
		Price:       report.Quote.Price,
		UserIV:      report.IV.IV + 2,
		MarketIV:    report.IV.IV,
		HorizonDays: report.HorizonDays,
		Method:      "ewma",
	}
	if err := st.SavePrediction(ctx, p); err != nil {
		t.Fatalf("SavePrediction: %v", err)
	}

	stored, err := st.GetPrediction(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPrediction: %v", err)
	}
	if stored.Symbol != "ACME" || stored.MarketIV != 31.4 {
		t.Errorf("stored prediction mismatch: %+v", stored)
	}
}

func TestUnknownSymbolPropagates(t *testing.T) {
	ctx := context.Background()
	backend := fakeBackend(t, "ACME", 40)
	client := marketdata.NewClient(backend.URL, zerolog.Nop())
	analyzer := analysis.NewAnalyzer(client, zerolog.Nop())

	if _, err := analyzer.Analyze(ctx, "NOPE", 30); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestShortHistoryDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	backend := fakeBackend(t, "ACME", 12)
	client := marketdata.NewClient(backend.URL, zerolog.Nop())
	analyzer := analysis.NewAnalyzer(client, zerolog.Nop())

	report, err := analyzer.Analyze(ctx, "ACME", 30)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// 12 bars: close-to-close works, EWMA and the rank history do not
	for _, mv := range report.Methods {
		if mv.Method == "ewma" && mv.Estimate != nil {
			t.Error("EWMA should be unavailable on 12 bars")
		}
	}
	if report.Rank != nil {
		t.Error("rank should be unavailable without rolling history")
	}
	if report.Distribution != nil {
		t.Error("30-day distribution should be unavailable on 12 bars")
	}
}
