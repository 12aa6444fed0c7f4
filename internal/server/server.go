package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/jobs"
	"go.uber.org/zap"
)

const (
	DefaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

// Matcher is the part of the match service the HTTP layer depends on.
type Matcher interface {
	ListJobs(ctx context.Context) ([]jobs.Title, error)
	FindMatches(ctx context.Context, resumeText *string) ([]jobs.Title, error)
}

type Config struct {
	Addr        string
	CORSOrigins []string
}

// Server exposes the match service over HTTP.
type Server struct {
	matcher   Matcher
	extractor *extract.Extractor
	logger    *zap.Logger
	http      *http.Server
}

func New(cfg Config, matcher Matcher, extractor *extract.Extractor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = extract.New(0)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{
		matcher:   matcher,
		extractor: extractor,
		logger:    logger,
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) router(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger))
	r.Use(cors.New(corsConfig(origins)))

	r.GET("/health", s.health)
	r.GET("/jobs", s.listJobs)
	r.POST("/jobs", s.findMatches)
	r.POST("/resumes/extract", s.extractResume)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", headerRequestID}
	cfg.ExposeHeaders = []string{headerRequestID}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}

	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cfg
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", zap.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
