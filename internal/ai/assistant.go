package ai

import (
	"context"
	"encoding/json"
)

// Lead score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// ScoreRequest carries the prospect details used for scoring.
type ScoreRequest struct {
	Industry    string `json:"industry"`
	WebsiteText string `json:"website_text"`
	Requirement string `json:"requirement"`
	WebsiteURL  string `json:"website_url"`
}

// ScoreResult is a scored lead. KeywordsFound is nil for scorers that do
// not extract keywords and is then left out of the JSON form; a non-nil
// empty slice is encoded as [].
type ScoreResult struct {
	LeadScore     int      `json:"lead_score"`
	KeywordsFound []string `json:"keywords_found"`
	Reason        string   `json:"reason"`
}

func (r ScoreResult) MarshalJSON() ([]byte, error) {
	if r.KeywordsFound == nil {
		return json.Marshal(struct {
			LeadScore int    `json:"lead_score"`
			Reason    string `json:"reason"`
		}{r.LeadScore, r.Reason})
	}

	type plain ScoreResult
	return json.Marshal(plain(r))
}

// EmailRequest describes the prospect an outreach email is written for.
// Keywords take precedence over Requirement.
type EmailRequest struct {
	CompanyName string   `json:"company_name"`
	Industry    string   `json:"industry"`
	Keywords    []string `json:"keywords"`
	Requirement string   `json:"requirement"`
}

// Scorer rates a lead. Name is the strategy label used in config and metrics.
type Scorer interface {
	Name() string
	Score(ctx context.Context, req *ScoreRequest) (*ScoreResult, error)
}

// EmailWriter drafts an outreach email for a prospect.
type EmailWriter interface {
	Generate(ctx context.Context, req *EmailRequest) (string, error)
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
