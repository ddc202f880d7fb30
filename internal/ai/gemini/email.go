package gemini

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/logger"
	"github.com/spigell/lead-assistant/internal/utils"
	"go.uber.org/zap"
)

//go:embed email_keywords_prompt.md
var emailKeywordsTemplate string

//go:embed email_requirement_prompt.md
var emailRequirementTemplate string

type textGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// EmailWriter drafts cold outreach emails.
type EmailWriter struct {
	generator textGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewEmailWriter(generator textGenerator, log *zap.Logger, maxLogLength int) *EmailWriter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &EmailWriter{
		generator: generator,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// Generate returns the trimmed email body. Keywords select the longer
// variant; a requirement alone selects the short one.
func (w *EmailWriter) Generate(ctx context.Context, req *ai.EmailRequest) (string, error) {
	if req == nil {
		req = &ai.EmailRequest{}
	}

	prompt := buildEmailPrompt(req)

	w.logger.Debug("gemini email request",
		zap.String("company", req.CompanyName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)

	text, err := w.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}

	w.logger.Debug("gemini email response",
		zap.String("company", req.CompanyName),
		zap.Int("response_length", utf8.RuneCountInString(text)),
	)

	return text, nil
}

func buildEmailPrompt(req *ai.EmailRequest) string {
	keywords := cleanKeywords(req.Keywords)
	requirement := strings.TrimSpace(req.Requirement)

	template := emailKeywordsTemplate
	if len(keywords) == 0 && requirement != "" {
		template = emailRequirementTemplate
	}

	prompt := strings.ReplaceAll(template, "{{COMPANY}}", strings.TrimSpace(req.CompanyName))
	prompt = strings.ReplaceAll(prompt, "{{INDUSTRY}}", strings.TrimSpace(req.Industry))
	prompt = strings.ReplaceAll(prompt, "{{KEYWORDS}}", strings.Join(keywords, ", "))
	return strings.ReplaceAll(prompt, "{{REQUIREMENT}}", requirement)
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// IsEmptyResponse reports whether err means Gemini produced no text.
func IsEmptyResponse(err error) bool {
	return errors.Is(err, ErrEmptyResponse)
}
