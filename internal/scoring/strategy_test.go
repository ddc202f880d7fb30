package scoring

import (
	"context"
	"testing"

	"github.com/spigell/lead-assistant/internal/ai"
)

type namedScorer string

func (n namedScorer) Name() string { return string(n) }

func (n namedScorer) Score(context.Context, *ai.ScoreRequest) (*ai.ScoreResult, error) {
	return &ai.ScoreResult{}, nil
}

func TestSelect(t *testing.T) {
	rules := namedScorer("rules")
	aiScorer := namedScorer("ai")

	tests := []struct {
		name    string
		want    ai.Scorer
		wantErr bool
	}{
		{name: "", want: rules},
		{name: "rules", want: rules},
		{name: " AI ", want: aiScorer},
		{name: "magic", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Select(tt.name, rules, nil, aiScorer)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("Select(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Select(%q): unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("Select(%q) = %v, want %v", tt.name, got.Name(), tt.want.Name())
		}
	}
}

func TestSelectMissingAIScorer(t *testing.T) {
	if _, err := Select("ai", namedScorer("rules")); err == nil {
		t.Fatalf("expected error when ai scorer is not configured")
	}
}

func TestDegraded(t *testing.T) {
	res := Degraded()
	if res.LeadScore != 0 || res.Reason != "AI service failed" || res.KeywordsFound != nil {
		t.Fatalf("unexpected degraded payload %+v", res)
	}
}
