package interpret

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ivlens/internal/analysis"
	"ivlens/internal/analysis/volatility"
)

const systemPrompt = `You are a volatility analyst. Given structured options
volatility data, write a short interpretation (3-5 sentences) for a retail
dashboard: what the implied volatility level means versus realized history,
what the expected move implies, and any notable skew between estimators.
Plain language, no advice, no hedging boilerplate.`

// OpenAIGenerator generates interpretations through the OpenAI API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// DefaultModel is used when the config does not name one.
const DefaultModel = openai.GPT4oMini

// NewOpenAIGenerator creates the primary remote provider.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, report *analysis.Report) (string, error) {
	return complete(ctx, g.client, g.model, report)
}

// CompatibleGenerator generates interpretations through any OpenAI
// compatible endpoint (secondary provider).
type CompatibleGenerator struct {
	client *openai.Client
	model  string
}

// NewCompatibleGenerator creates the secondary remote provider against a
// custom base URL.
func NewCompatibleGenerator(apiKey, baseURL, model string) *CompatibleGenerator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if model == "" {
		model = DefaultModel
	}
	return &CompatibleGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *CompatibleGenerator) Name() string { return "secondary" }

func (g *CompatibleGenerator) Generate(ctx context.Context, report *analysis.Report) (string, error) {
	return complete(ctx, g.client, g.model, report)
}

func complete(ctx context.Context, client *openai.Client, model string, report *analysis.Report) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(report)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from provider")
	}
	return resp.Choices[0].Message.Content, nil
}

// buildPrompt flattens the report into the structured summary both remote
// providers consume.
func buildPrompt(report *analysis.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s, spot %.2f\n", report.Symbol, report.Quote.Price)
	if report.IV != nil {
		fmt.Fprintf(&b, "Quoted IV: %.1f%% (source %s)\n", report.IV.IV, report.IV.Source)
	}
	for _, mv := range report.Methods {
		if mv.Estimate == nil || mv.Method == volatility.MethodImplied {
			continue
		}
		fmt.Fprintf(&b, "%s: %.1f%%", mv.Info.Label, mv.Estimate.Value)
		if mv.DeltaIV != nil {
			fmt.Fprintf(&b, " (%+.1f vs IV)", *mv.DeltaIV)
		}
		b.WriteString("\n")
	}
	if report.Rank != nil {
		fmt.Fprintf(&b, "IV rank %.0f (%s), percentile %.0f\n", report.Rank.Rank, report.RankBand, report.Rank.Percentile)
	}
	if report.ExpectedMove != nil {
		fmt.Fprintf(&b, "Expected %d-day move: %.2f (%.2f%%)\n", report.HorizonDays, report.ExpectedMove.Move, report.ExpectedMove.MovePercent)
	}
	if report.Distribution != nil {
		d := report.Distribution
		fmt.Fprintf(&b, "Historical %d-day moves: median %.2f%%, p95 %.2f%%, max %.2f%%, %d up / %d down of %d\n",
			d.LookaheadDays, d.Median, d.P95, d.Max, d.UpMoves, d.DownMoves, d.Samples)
	}
	return b.String()
}
