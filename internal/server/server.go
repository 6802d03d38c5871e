// file: internal/server/server.go
// version: 2.1.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/brandmatch/internal/database"
	"github.com/jdfalk/brandmatch/internal/logger"
	"github.com/jdfalk/brandmatch/internal/metrics"
	"github.com/jdfalk/brandmatch/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	store      database.Store
	search     *SearchService
	limiter    *middleware.IPRateLimiter
	opts       Options
}

// Options configures middleware behavior.
type Options struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	APIKey             string // empty disables auth on catalog writes
	JSONBodyLimit      int64
	BatchBodyLimit     int64
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	HeartbeatPeriod time.Duration
}

// GetDefaultServerConfig returns default server configuration
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Host:            "localhost",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		HeartbeatPeriod: 15 * time.Second,
	}
}

// NewServer creates a new server instance
func NewServer(store database.Store, search *SearchService, opts Options) *Server {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(RequestLogging())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.MaxRequestBodySize(opts.JSONBodyLimit, opts.BatchBodyLimit))

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:  router,
		store:   store,
		search:  search,
		limiter: middleware.NewIPRateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst),
		opts:    opts,
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start(cfg ServerConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-quit
		cancel()
	}()
	return s.Run(ctx, cfg)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("starting server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	heartbeat := cfg.HeartbeatPeriod
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	s.heartbeat(ctx)

	for {
		select {
		case err, ok := <-errCh:
			if ok && err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		case <-ticker.C:
			s.heartbeat(ctx)
		case <-ctx.Done():
			return s.shutdown(cfg.ShutdownTimeout)
		}
	}
}

func (s *Server) shutdown(timeout time.Duration) error {
	logger.L().Info("shutting down server")

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.L().Info("server exited")
	return nil
}

// heartbeat runs the periodic housekeeping of a running server.
func (s *Server) heartbeat(ctx context.Context) {
	s.refreshGauges(ctx)
	if s.search != nil {
		s.search.PruneSuggestions()
	}
}

// refreshGauges updates the catalog and process gauges.
func (s *Server) refreshGauges(ctx context.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.SetMemoryAlloc(mem.Alloc)
	metrics.SetGoroutines(runtime.NumGoroutine())
	s.refreshProductCount(ctx)
}

func (s *Server) refreshProductCount(ctx context.Context) {
	if s.store == nil {
		return
	}
	n, err := s.store.CountProducts(ctx)
	if err != nil {
		logger.L().Debug("failed to count products", zap.Error(err))
		return
	}
	metrics.SetProducts(n)
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (both paths for compatibility)
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	limited := s.limiter.Middleware()
	writes := middleware.RequireAPIKey(s.opts.APIKey)

	api := s.router.Group("/api/v1")
	{
		// Catalog routes
		api.GET("/products", s.listProducts)
		api.GET("/products/search", limited, s.searchProducts)
		api.GET("/products/:id", s.getProduct)
		api.POST("/products", writes, s.createProduct)
		api.POST("/products/batch", writes, s.batchCreateProducts)
		api.DELETE("/products/:id", writes, s.deleteProduct)
		api.GET("/categories", s.listCategories)

		// Brand routes
		api.GET("/brands/suggest", limited, s.suggestBrands)
		api.GET("/brands/score", limited, s.scoreBrand)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck reports whether the catalog store answers.
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, NewStatusResponse("error", gin.H{"database": "not initialized"}))
		return
	}
	count, err := s.store.CountProducts(ctx)
	if err != nil {
		logger.L().Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, NewStatusResponse("degraded", gin.H{"database": "unreachable"}))
		return
	}
	c.JSON(http.StatusOK, NewStatusResponse("ok", gin.H{
		"products":  count,
		"timestamp": time.Now().Unix(),
	}))
}
