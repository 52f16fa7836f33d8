package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/stepscope/backend/internal/api/http"
	"github.com/stepscope/backend/internal/api/middleware"
	"github.com/stepscope/backend/internal/infrastructure/config"
	"github.com/stepscope/backend/internal/infrastructure/logging"
	"github.com/stepscope/backend/internal/infrastructure/monitoring"
	"github.com/stepscope/backend/internal/infrastructure/tracing"
	"github.com/stepscope/backend/internal/sandbox"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	supervisor *sandbox.Supervisor
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing server",
		zap.String("port", cfg.Server.Port),
		zap.Int("max_steps", cfg.Run.MaxSteps),
		zap.Duration("run_timeout", cfg.Run.Timeout),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Initialize request tracing
	tracer := tracing.New("backend", logger.Logger)

	// Initialize the execution supervisor
	supervisor := sandbox.NewSupervisor(sandbox.Config{
		MaxSteps:      cfg.Run.MaxSteps,
		Timeout:       cfg.Run.Timeout,
		MaxConcurrent: cfg.Run.MaxConcurrent,
	}, logger).WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := apihttp.NewHandlers(supervisor, cfg.Run.MaxCodeBytes).WithMetrics(metrics)

	// Register routes
	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.Server.StaticDir, "index.html"))
	})
	router.Static("/static", cfg.Server.StaticDir)
	router.GET("/health", handlers.Health)
	router.POST("/api/run", handlers.RunCode)
	router.GET("/api/stats", handlers.Stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		supervisor: supervisor,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.logger.Sync()
	return nil
}
