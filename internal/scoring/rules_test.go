package scoring

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/nlp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeExtractor struct {
	keywords nlp.KeywordSet
	lastText string
}

func (f *fakeExtractor) Extract(text string) nlp.KeywordSet {
	f.lastText = text
	if f.keywords == nil {
		return nlp.KeywordSet{}
	}
	return f.keywords
}

type fakeFetcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func keywordSet(terms ...string) nlp.KeywordSet {
	set := nlp.KeywordSet{}
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		keywords   nlp.KeywordSet
		wantScore  int
		wantReason string
	}{
		{name: "empty", keywords: keywordSet(), wantScore: 20, wantReason: "Low relevance"},
		{name: "unrelated", keywords: keywordSet("bakery", "bread"), wantScore: 20, wantReason: "Low relevance"},
		{name: "single domain", keywords: keywordSet("software"), wantScore: 35, wantReason: "saas keyword match (1)"},
		{
			name:       "cloud counts twice",
			keywords:   keywordSet("cloud", "platform", "ai", "automation"),
			wantScore:  95,
			wantReason: "saas keyword match (2), ai keyword match (2), cloud keyword match (1)",
		},
		{
			name:       "capped",
			keywords:   keywordSet("software", "platform", "cloud", "subscription", "ai", "aws"),
			wantScore:  100,
			wantReason: "saas keyword match (4), ai keyword match (1), cloud keyword match (2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reason := Evaluate(tt.keywords)
			if score != tt.wantScore || reason != tt.wantReason {
				t.Fatalf("got (%d, %q), want (%d, %q)", score, reason, tt.wantScore, tt.wantReason)
			}
		})
	}
}

func TestRuleScorerCombinesIndustryAndText(t *testing.T) {
	extractor := &fakeExtractor{keywords: keywordSet("software", "bakery")}
	scorer := NewRuleScorer(extractor, nil)

	res, err := scorer.Score(context.Background(), &ai.ScoreRequest{Industry: "SaaS", WebsiteText: "We build software"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if extractor.lastText != "saas We build software" {
		t.Fatalf("unexpected combined text %q", extractor.lastText)
	}
	if res.LeadScore != 35 || res.Reason != "saas keyword match (1)" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(res.KeywordsFound, []string{"bakery", "software"}) {
		t.Fatalf("unexpected keywords %v", res.KeywordsFound)
	}
}

func TestRuleScorerEmptyInput(t *testing.T) {
	res, err := NewRuleScorer(&fakeExtractor{}, zap.NewNop()).Score(context.Background(), &ai.ScoreRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LeadScore != BaseScore || res.Reason != ReasonLowMatch {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.KeywordsFound == nil || len(res.KeywordsFound) != 0 {
		t.Fatalf("rule scorer must report an empty keyword list, got %#v", res.KeywordsFound)
	}
}

func TestRuleScorerTextSources(t *testing.T) {
	tests := []struct {
		name        string
		req         *ai.ScoreRequest
		fetcher     *fakeFetcher
		wantText    string
		wantFetches int
	}{
		{
			name:     "website text wins",
			req:      &ai.ScoreRequest{WebsiteText: "site", Requirement: "req", WebsiteURL: "https://example.com"},
			fetcher:  &fakeFetcher{text: "page"},
			wantText: " site",
		},
		{
			name:     "requirement fallback",
			req:      &ai.ScoreRequest{Requirement: "req", WebsiteURL: "https://example.com"},
			fetcher:  &fakeFetcher{text: "page"},
			wantText: " req",
		},
		{
			name:        "fetched page",
			req:         &ai.ScoreRequest{WebsiteURL: "https://example.com"},
			fetcher:     &fakeFetcher{text: "page"},
			wantText:    " page",
			wantFetches: 1,
		},
		{
			name:        "fetch failure",
			req:         &ai.ScoreRequest{Industry: "Retail", WebsiteURL: "https://example.com"},
			fetcher:     &fakeFetcher{err: errors.New("timeout")},
			wantText:    "retail ",
			wantFetches: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &fakeExtractor{}
			scorer := NewRuleScorer(extractor, nil, WithFetcher(tt.fetcher))

			if _, err := scorer.Score(context.Background(), tt.req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if extractor.lastText != tt.wantText {
				t.Fatalf("got text %q, want %q", extractor.lastText, tt.wantText)
			}
			if tt.fetcher.calls != tt.wantFetches {
				t.Fatalf("got %d fetches, want %d", tt.fetcher.calls, tt.wantFetches)
			}
		})
	}
}

func TestRuleScorerLogsFetchFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	scorer := NewRuleScorer(&fakeExtractor{}, zap.New(core), WithFetcher(&fakeFetcher{err: errors.New("boom")}))

	if _, err := scorer.Score(context.Background(), &ai.ScoreRequest{WebsiteURL: "https://example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessageSnippet("website fetch failed").Len() != 1 {
		t.Fatalf("expected fetch failure to be logged")
	}
}

func newFullExtractor(t *testing.T) *nlp.Extractor {
	t.Helper()
	engine, err := nlp.NewFull()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewExtractor(engine, nil)
}

func TestTriggersSurviveFullEngine(t *testing.T) {
	extractor := newFullExtractor(t)

	for _, domain := range Domains() {
		for _, trigger := range domain.Triggers {
			texts := map[string]string{
				"alone":    trigger,
				"upper":    strings.ToUpper(trigger),
				"sentence": "We sell " + trigger + " to large enterprises.",
			}
			for form, text := range texts {
				got := extractor.Extract(text)
				if !got.Has(trigger) {
					t.Fatalf("%s/%s (%s): %q gave %v", domain.Name, trigger, form, text, got.Sorted())
				}
			}
		}
	}
}

func TestRuleScorerWithFullEngine(t *testing.T) {
	scorer := NewRuleScorer(newFullExtractor(t), nil)

	tests := []struct {
		name       string
		req        *ai.ScoreRequest
		wantScore  int
		wantReason string
	}{
		{
			name:       "acronyms",
			req:        &ai.ScoreRequest{Industry: "AI", WebsiteText: "AI consulting on AWS"},
			wantScore:  50,
			wantReason: "ai keyword match (1), cloud keyword match (1)",
		},
		{
			name:       "every domain",
			req:        &ai.ScoreRequest{Industry: "Software", WebsiteText: "Automation services running on Azure"},
			wantScore:  65,
			wantReason: "saas keyword match (1), ai keyword match (1), cloud keyword match (1)",
		},
		{
			name:       "unrelated",
			req:        &ai.ScoreRequest{Industry: "Bakery", WebsiteText: "Fresh bread every morning"},
			wantScore:  20,
			wantReason: "Low relevance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := scorer.Score(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.LeadScore != tt.wantScore || res.Reason != tt.wantReason {
				t.Fatalf("got (%d, %q) keywords %v, want (%d, %q)", res.LeadScore, res.Reason, res.KeywordsFound, tt.wantScore, tt.wantReason)
			}
		})
	}
}

func TestTriggers(t *testing.T) {
	got := Triggers()
	if len(got) != 12 {
		t.Fatalf("expected 12 distinct triggers, got %d: %v", len(got), got)
	}
	seen := map[string]bool{}
	for _, trigger := range got {
		if seen[trigger] {
			t.Fatalf("duplicate trigger %q", trigger)
		}
		seen[trigger] = true
	}
}

func TestDomainsReturnsCopy(t *testing.T) {
	domains := Domains()
	domains[0].Triggers[0] = "mutated"

	if Domains()[0].Triggers[0] != "software" {
		t.Fatalf("domain table must not be mutable through Domains")
	}

	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, d.Name)
	}
	if !reflect.DeepEqual(names, []string{"saas", "ai", "cloud"}) {
		t.Fatalf("unexpected domain order %v", names)
	}
}
