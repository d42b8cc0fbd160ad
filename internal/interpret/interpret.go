// Package interpret turns a volatility analysis report into a short plain
// language interpretation. Generation falls through an ordered provider
// chain: OpenAI, then an optional OpenAI-compatible secondary endpoint,
// then a deterministic local template that can never fail.
package interpret

import (
	"context"

	"github.com/rs/zerolog"

	"ivlens/internal/analysis"
	apperrors "ivlens/internal/errors"
	"ivlens/internal/logging"
)

// Config holds the interpretation provider settings. It is constructed once
// from the application config and passed in; there is no package-level
// provider state.
type Config struct {
	OpenAIKey        string
	OpenAIModel      string
	SecondaryKey     string
	SecondaryBaseURL string
	SecondaryModel   string
}

// Generator produces interpretation text from a structured analysis report.
type Generator interface {
	Name() string
	Generate(ctx context.Context, report *analysis.Report) (string, error)
}

// Result carries the generated text and which provider produced it.
type Result struct {
	Provider string `json:"provider"`
	Text     string `json:"text"`
}

// Chain iterates an ordered generator list, falling through on failure.
// The final element is expected to never fail.
type Chain struct {
	generators []Generator
	logger     zerolog.Logger
}

// NewChain builds the provider chain from config: remote providers only
// when their credentials are set, the local template always last.
func NewChain(cfg Config, logger zerolog.Logger) *Chain {
	var generators []Generator
	if cfg.OpenAIKey != "" {
		generators = append(generators, NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIModel))
	}
	if cfg.SecondaryKey != "" && cfg.SecondaryBaseURL != "" {
		generators = append(generators, NewCompatibleGenerator(cfg.SecondaryKey, cfg.SecondaryBaseURL, cfg.SecondaryModel))
	}
	generators = append(generators, NewTemplateGenerator())
	return &Chain{
		generators: generators,
		logger:     logger.With().Str("component", "interpret").Logger(),
	}
}

// NewChainWith builds a chain from explicit generators, for tests and
// custom wiring. The caller is responsible for a non-failing tail.
func NewChainWith(logger zerolog.Logger, generators ...Generator) *Chain {
	return &Chain{generators: generators, logger: logger}
}

// Generate tries each provider in order and returns the first success.
func (c *Chain) Generate(ctx context.Context, report *analysis.Report) (Result, error) {
	var lastErr error
	for _, g := range c.generators {
		text, err := g.Generate(ctx, report)
		if err != nil {
			lastErr = apperrors.NewGeneratorError(g.Name(), err)
			c.logger.Warn().Err(err).Str("provider", g.Name()).Msg("interpretation provider failed, falling through")
			continue
		}
		logging.LogInterpretation(c.logger, report.Symbol, g.Name())
		return Result{Provider: g.Name(), Text: text}, nil
	}
	// Unreachable with a template tail
	return Result{}, lastErr
}

// Providers lists the chain's provider names in order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.generators))
	for i, g := range c.generators {
		names[i] = g.Name()
	}
	return names
}
