package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/ai/gemini"
	"github.com/spigell/lead-assistant/internal/logger"
	"github.com/spigell/lead-assistant/internal/metrics"
	"github.com/spigell/lead-assistant/internal/scoring"
	"go.uber.org/zap"
)

const (
	StatusRunning           = "AI service running"
	MessageEmailUnavailable = "LLM quota exceeded or service unavailable"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": StatusRunning})
}

func (s *Server) score(c *gin.Context) {
	log := loggerFrom(c)

	var req ai.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("score request body ignored", zap.Error(err))
		req = ai.ScoreRequest{}
	}

	strategy := "none"
	if s.deps.Scorer == nil {
		log.Error("no scorer configured")
		s.deps.Metrics.ObserveScore(strategy, metrics.OutcomeDegraded, 0)
		c.JSON(http.StatusOK, scoring.Degraded())
		return
	}
	strategy = s.deps.Scorer.Name()

	res, err := s.runScorer(c, &req)
	if err != nil || res == nil {
		log.Warn("lead scoring failed, serving degraded result",
			zap.String(logger.FieldStrategy, strategy),
			zap.Error(err),
		)
		s.deps.Metrics.ObserveScore(strategy, metrics.OutcomeDegraded, 0)
		c.JSON(http.StatusOK, scoring.Degraded())
		return
	}

	s.deps.Metrics.ObserveScore(strategy, metrics.OutcomeOK, res.LeadScore)
	c.JSON(http.StatusOK, res)
}

// runScorer turns a scorer panic into an error so /score keeps answering 200.
func (s *Server) runScorer(c *gin.Context, req *ai.ScoreRequest) (res *ai.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			loggerFrom(c).Error("scorer panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			res, err = nil, fmt.Errorf("scorer panicked: %v", r)
		}
	}()

	return s.deps.Scorer.Score(c.Request.Context(), req)
}

func (s *Server) generateEmail(c *gin.Context) {
	log := loggerFrom(c)

	var req ai.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("email request body ignored", zap.Error(err))
		req = ai.EmailRequest{}
	}

	if s.deps.EmailWriter == nil {
		log.Error("no email writer configured")
		s.emailUnavailable(c)
		return
	}

	text, err := s.deps.EmailWriter.Generate(c.Request.Context(), &req)
	if err != nil {
		log.Warn("email generation failed",
			zap.String("company", req.CompanyName),
			zap.Bool("empty_response", gemini.IsEmptyResponse(err)),
			zap.Error(err),
		)
		s.emailUnavailable(c)
		return
	}

	s.deps.Metrics.ObserveEmail(metrics.OutcomeOK)
	c.JSON(http.StatusOK, gin.H{"email": text})
}

func (s *Server) emailUnavailable(c *gin.Context) {
	s.deps.Metrics.ObserveEmail(metrics.OutcomeFailed)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": MessageEmailUnavailable})
}
