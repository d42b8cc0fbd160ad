package interpret

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ivlens/internal/analysis"
	"ivlens/internal/analysis/volatility"
	"ivlens/internal/models"
)

type stubGenerator struct {
	name string
	text string
	err  error
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(context.Context, *analysis.Report) (string, error) {
	return s.text, s.err
}

func sampleReport() *analysis.Report {
	iv := models.IVQuote{Symbol: "AAPL", IV: 28.5, Source: models.IVSourceOptionsChain}
	rank := volatility.RankResult{Rank: 72, Percentile: 64}
	em := volatility.ExpectedMove{Move: 8.6, MovePercent: 8.6}
	cc := volatility.Estimate{Method: volatility.MethodCloseToClose, Value: 22.1, Window: 252}
	return &analysis.Report{
		Symbol:      "AAPL",
		Quote:       models.Quote{Symbol: "AAPL", Price: 100},
		IV:          &iv,
		HorizonDays: 30,
		Window:      20,
		Methods: []analysis.MethodView{
			{Method: volatility.MethodImplied, Estimate: &volatility.Estimate{Method: volatility.MethodImplied, Value: 28.5}},
			{Method: volatility.MethodCloseToClose, Estimate: &cc},
		},
		Rank:         &rank,
		RankBand:     volatility.RankBand(rank.Rank),
		ExpectedMove: &em,
	}
}

func TestChainFallsThrough(t *testing.T) {
	chain := NewChainWith(zerolog.Nop(),
		&stubGenerator{name: "openai", err: errors.New("rate limited")},
		&stubGenerator{name: "secondary", err: errors.New("timeout")},
		NewTemplateGenerator(),
	)

	result, err := chain.Generate(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Provider != "local" {
		t.Errorf("expected local provider, got %s", result.Provider)
	}
	if result.Text == "" {
		t.Error("local template must produce text")
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	chain := NewChainWith(zerolog.Nop(),
		&stubGenerator{name: "openai", text: "remote interpretation"},
		&stubGenerator{name: "secondary", err: errors.New("should not be called")},
		NewTemplateGenerator(),
	)

	result, err := chain.Generate(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Provider != "openai" || result.Text != "remote interpretation" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestNewChainOrdering(t *testing.T) {
	full := NewChain(Config{
		OpenAIKey:        "key-a",
		SecondaryKey:     "key-b",
		SecondaryBaseURL: "https://alt.example/v1",
	}, zerolog.Nop())
	want := []string{"openai", "secondary", "local"}
	got := full.Providers()
	if len(got) != len(want) {
		t.Fatalf("providers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("provider %d = %s, want %s", i, got[i], want[i])
		}
	}

	bare := NewChain(Config{}, zerolog.Nop())
	if got := bare.Providers(); len(got) != 1 || got[0] != "local" {
		t.Errorf("unconfigured chain must be local only, got %v", got)
	}
}

func TestTemplateGenerator(t *testing.T) {
	text, err := NewTemplateGenerator().Generate(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"AAPL", "28.5%", "above average", "8.60"} {
		if !strings.Contains(text, want) {
			t.Errorf("interpretation missing %q:\n%s", want, text)
		}
	}
}

func TestTemplateGeneratorNoIV(t *testing.T) {
	report := sampleReport()
	report.IV = nil
	report.Rank = nil
	report.ExpectedMove = nil
	text, err := NewTemplateGenerator().Generate(context.Background(), report)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(text, "No implied volatility quote") {
		t.Errorf("missing degraded-mode copy:\n%s", text)
	}
}
