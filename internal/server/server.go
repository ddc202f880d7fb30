// Package server exposes lead scoring and email drafting over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/metrics"
	"go.uber.org/zap"
)

const (
	DefaultPort         = 5001
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
)

type Config struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write-timeout" validate:"gte=0"`
}

// Dependencies are the collaborators the HTTP handlers delegate to.
type Dependencies struct {
	Scorer      ai.Scorer
	EmailWriter ai.EmailWriter
	Metrics     *metrics.Metrics
	// Gatherer backs /metrics. The route is not registered when nil.
	Gatherer prometheus.Gatherer
}

type Server struct {
	deps   Dependencies
	logger *zap.Logger
	router *gin.Engine
	http   *http.Server
}

func New(cfg Config, deps Dependencies, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	s := &Server{deps: deps, logger: logger}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(s.logger),
		accessLog(),
		instrument(s.deps.Metrics),
		recovery(),
	)

	router.GET("/health", s.health)
	router.POST("/score", s.score)
	router.POST("/generate-email", s.generateEmail)

	if s.deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Addr() string { return s.http.Addr }

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
