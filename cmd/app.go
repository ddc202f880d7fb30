package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/ai/gemini"
	"github.com/spigell/lead-assistant/internal/nlp"
	"github.com/spigell/lead-assistant/internal/scoring"
	"github.com/spigell/lead-assistant/internal/secrets"
	"github.com/spigell/lead-assistant/internal/website"

	"go.uber.org/zap"
)

const (
	apiKeyEnv  = "GEMINI_API_KEY"
	apiKeyHint = "set GEMINI_API_KEY or GEMINI_API_KEY_FILE, or ai.gemini.api-key / ai.gemini.api-key-file in the configuration file"
)

func newEngine(cfg NLPConfig, logger *zap.Logger) nlp.Engine {
	load := func() nlp.Engine { return nlp.Load(cfg.Engine, logger) }
	if cfg.Lazy {
		logger.Info("nlp engine will load on first use", zap.String("engine", cfg.Engine))
		return nlp.Lazy(load)
	}
	return load()
}

func newGenerator(ctx context.Context, cfg GeminiConfig) (*gemini.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   apiKeyEnv,
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey, cfg.Model)
}

func newFetcher(cfg WebsiteConfig, logger *zap.Logger) *website.Fetcher {
	if !cfg.Enabled {
		return nil
	}
	return website.New(cfg.Config, logger.Named("website"))
}

// newScorer builds the scorer for the configured strategy. generator may be
// nil when only the rule-based strategy is needed.
func newScorer(config *Config, generator *gemini.Generator, logger *zap.Logger) (ai.Scorer, error) {
	extractor := scoring.NewExtractor(newEngine(config.NLP, logger.Named("nlp")), logger.Named("nlp"))

	var opts []scoring.RuleOption
	if fetcher := newFetcher(config.Website, logger); fetcher != nil {
		opts = append(opts, scoring.WithFetcher(fetcher))
	}
	rules := scoring.NewRuleScorer(extractor, logger.Named("scoring"), opts...)

	var aiScorer ai.Scorer
	if generator != nil {
		aiScorer = gemini.NewScorer(generator, logger.Named("gemini"), config.AI.Gemini.MaxLogLength)
	}

	scorer, err := scoring.Select(config.Scoring.Strategy, rules, aiScorer)
	if err != nil {
		return nil, fmt.Errorf("select scorer: %w", err)
	}

	logger.Info("lead scorer ready",
		zap.String("scoring_strategy", scorer.Name()),
		zap.String("nlp_engine", strings.TrimSpace(config.NLP.Engine)),
	)
	return scorer, nil
}
