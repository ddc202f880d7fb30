package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/logger"
	"github.com/spigell/lead-assistant/internal/utils"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	StrategyName = "ai"

	ReasonInsufficientData = "Insufficient data"

	defaultMaxLogLength = 200
)

//go:embed score_prompt.md
var scorePromptTemplate string

//go:embed score_schema.json
var scoreSchemaJSON string

var (
	replySchema = mustCompileSchema(scoreSchemaJSON)

	responseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lead_score": {Type: genai.TypeInteger, Description: "lead quality from 0 to 100"},
			"reason":     {Type: genai.TypeString, Description: "short justification"},
		},
		Required: []string{"lead_score", "reason"},
	}
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Model() string
}

// Scorer asks Gemini to rate a lead.
type Scorer struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

type scoreReply struct {
	LeadScore int    `mapstructure:"lead_score"`
	Reason    string `mapstructure:"reason"`
}

func NewScorer(generator jsonGenerator, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Name() string { return StrategyName }

// Score returns the model's rating. A request without industry and
// requirement is answered locally.
func (s *Scorer) Score(ctx context.Context, req *ai.ScoreRequest) (*ai.ScoreResult, error) {
	if req == nil {
		req = &ai.ScoreRequest{}
	}

	industry := strings.TrimSpace(req.Industry)
	requirement := strings.TrimSpace(req.Requirement)
	if industry == "" && requirement == "" {
		return &ai.ScoreResult{LeadScore: ai.MinScore, Reason: ReasonInsufficientData}, nil
	}

	prompt := buildScorePrompt(industry, requirement)

	s.logger.Debug("gemini score request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateJSON(ctx, prompt, responseSchema)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini score response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseScore(raw)
}

func buildScorePrompt(industry, requirement string) string {
	if industry == "" {
		industry = "unknown"
	}
	if requirement == "" {
		requirement = "not specified"
	}

	prompt := strings.ReplaceAll(scorePromptTemplate, "{{INDUSTRY}}", industry)
	return strings.ReplaceAll(prompt, "{{REQUIREMENT}}", requirement)
}

func parseScore(raw string) (*ai.ScoreResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	result, err := replySchema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate gemini response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("gemini response does not match schema: %s", strings.Join(problems, "; "))
	}

	var reply scoreReply
	if err := mapstructure.WeakDecode(data, &reply); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	return &ai.ScoreResult{
		LeadScore: ai.ClampScore(reply.LeadScore),
		Reason:    strings.TrimSpace(reply.Reason),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func mustCompileSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("compile score reply schema: %v", err))
	}
	return schema
}
