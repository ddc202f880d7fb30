package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/nlp"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	StrategyRules = "rules"

	BaseScore      = 20
	PointsPerMatch = 15
	ReasonLowMatch = "Low relevance"
)

type keywordExtractor interface {
	Extract(text string) nlp.KeywordSet
}

type pageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// RuleScorer scores leads by matching extracted keywords against the
// domain table.
type RuleScorer struct {
	extractor keywordExtractor
	fetcher   pageFetcher
	logger    *zap.Logger
}

// RuleOption customizes a RuleScorer.
type RuleOption func(*RuleScorer)

// WithFetcher lets the scorer download website_url when no text is given.
func WithFetcher(f pageFetcher) RuleOption {
	return func(s *RuleScorer) { s.fetcher = f }
}

// NewRuleScorer returns a scorer backed by extractor.
func NewRuleScorer(extractor keywordExtractor, logger *zap.Logger, opts ...RuleOption) *RuleScorer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RuleScorer{extractor: extractor, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RuleScorer) Name() string { return StrategyRules }

// Score never fails; the error is part of the Scorer contract.
func (s *RuleScorer) Score(ctx context.Context, req *ai.ScoreRequest) (*ai.ScoreResult, error) {
	if req == nil {
		req = &ai.ScoreRequest{}
	}

	text := s.sourceText(ctx, req)
	combined := cases.Lower(language.English).String(req.Industry) + " " + text

	keywords := s.extractor.Extract(combined)
	score, reason := Evaluate(keywords)

	s.logger.Debug("rule score computed",
		zap.Int("text_length", len(combined)),
		zap.Strings("keywords", keywords.Sorted()),
		zap.Int("score", score),
	)

	return &ai.ScoreResult{LeadScore: score, KeywordsFound: keywords.Sorted(), Reason: reason}, nil
}

func (s *RuleScorer) sourceText(ctx context.Context, req *ai.ScoreRequest) string {
	if text := strings.TrimSpace(req.WebsiteText); text != "" {
		return text
	}
	if text := strings.TrimSpace(req.Requirement); text != "" {
		return text
	}

	url := strings.TrimSpace(req.WebsiteURL)
	if url == "" || s.fetcher == nil {
		return ""
	}

	text, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("website fetch failed, scoring without page text", zap.String("url", url), zap.Error(err))
		return ""
	}
	return text
}

// Evaluate applies the domain table to a keyword set.
func Evaluate(keywords nlp.KeywordSet) (int, string) {
	score := BaseScore
	var reasons []string

	for _, domain := range domainTable {
		matches := 0
		for _, trigger := range domain.Triggers {
			if keywords.Has(trigger) {
				matches++
			}
		}
		if matches > 0 {
			score += matches * PointsPerMatch
			reasons = append(reasons, fmt.Sprintf("%s keyword match (%d)", domain.Name, matches))
		}
	}

	if score > ai.MaxScore {
		score = ai.MaxScore
	}

	if len(reasons) == 0 {
		return score, ReasonLowMatch
	}
	return score, strings.Join(reasons, ", ")
}
