package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/middleware"
	"github.com/symptom-insight-server/pkg/external"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Gallery pages symptom images for free-text input.
type Gallery interface {
	Gallery(ctx context.Context, input string, offset, count int) []domain.SymptomAsset
}

// RelatedFinder suggests vocabulary symptoms related to an input.
type RelatedFinder interface {
	Related(input string, maxCount int) []string
}

// CacheAdmin clears every cached response.
type CacheAdmin interface {
	ClearAll(ctx context.Context) error
}

// HealthReporter reports the circuit state of each remote service.
type HealthReporter interface {
	Health() []external.ServiceHealth
}

// Dependencies are the operations exposed over HTTP.
type Dependencies struct {
	HealthData  domain.HealthDataResolver
	Diagnosis   domain.DiagnosisSource
	Medications domain.MedicationSource
	Images      Gallery
	Related     RelatedFinder
	Cache       CacheAdmin
	Services    HealthReporter
}

// Server represents the HTTP server
type Server struct {
	config domain.ServerConfig
	deps   Dependencies
	router *gin.Engine
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(config domain.ServerConfig, deps Dependencies, logger *logrus.Logger) *Server {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AccessLog(logger))

	s := &Server{
		config: config,
		deps:   deps,
		router: router,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/health-data", s.handleHealthData)
		v1.POST("/diagnosis", s.handleDiagnosis)
		v1.POST("/medications", s.handleMedications)
		v1.POST("/symptom-images", s.handleSymptomImages)
		v1.GET("/symptom-images", s.handleSymptomImages)
		v1.GET("/related-symptoms", s.handleRelatedSymptoms)
		v1.POST("/cache/clear", s.handleClearCache)
	}
}
