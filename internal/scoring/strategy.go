package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/lead-assistant/internal/ai"
)

// ReasonAIFailed is reported when a scorer could not produce a result.
const ReasonAIFailed = "AI service failed"

// Strategies lists the accepted scoring strategy names.
var Strategies = []string{StrategyRules, "ai"}

// Degraded is the payload served when scoring fails.
func Degraded() *ai.ScoreResult {
	return &ai.ScoreResult{LeadScore: ai.MinScore, Reason: ReasonAIFailed}
}

// Select returns the scorer registered under name.
func Select(name string, scorers ...ai.Scorer) (ai.Scorer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = StrategyRules
	}

	available := make([]string, 0, len(scorers))
	for _, s := range scorers {
		if s == nil {
			continue
		}
		if s.Name() == name {
			return s, nil
		}
		available = append(available, s.Name())
	}

	return nil, fmt.Errorf("unknown scoring strategy %q (available: %s)", name, strings.Join(available, ", "))
}
