// file: internal/server/server.go
// version: 1.0.0
// guid: 5b0c4354-6576-8798-a9ba-cbdcedfe0f10

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/tokenbridge/internal/config"
	"github.com/jdfalk/tokenbridge/internal/exchange"
	"github.com/jdfalk/tokenbridge/internal/metrics"
	"github.com/jdfalk/tokenbridge/internal/server/middleware"
	"github.com/jdfalk/tokenbridge/internal/tokencache"
	"github.com/jdfalk/tokenbridge/internal/watcher"
)

// Server wires the token cache and the exchange gateway behind an HTTP API.
// The cache is owned here and injected into handlers; it never calls the
// exchanger itself.
type Server struct {
	cache      *tokencache.Cache
	exchanger  exchange.Exchanger
	tokenTTL   time.Duration
	httpServer *http.Server
	router     *gin.Engine
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

// NewServer creates a new server instance
func NewServer(cache *tokencache.Cache, exchanger exchange.Exchanger, tokenTTL time.Duration) *Server {
	router := gin.New()

	// Set up middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.MaxRequestBodySize(int64(config.AppConfig.JSONBodyLimitMB) << 20))

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		cache:     cache,
		exchanger: exchanger,
		tokenTTL:  tokenTTL,
		router:    router,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Janitor: sweep expired tokens so abandoned users don't pin memory.
	// Lazy eviction in Get keeps reads correct either way. The janitor has
	// its own done channel so the single shutdown signal is only ever
	// received by the blocking wait below.
	done := make(chan struct{})
	go s.runJanitor(cfg.CleanupInterval, done)

	// Credential change invalidates every cached downstream token.
	var credWatcher *watcher.Watcher
	if config.AppConfig.WatchCredentials {
		credWatcher = watcher.New(func(path string) {
			log.Printf("[WARN] credentials file %s changed, clearing token cache", path)
			if err := config.LoadCredentialsFromFile(); err != nil {
				log.Printf("[ERROR] failed to reload credentials: %v", err)
			}
			s.cache.Clear()
			metrics.SetCachedTokens(0)
		}, 0)
		if err := credWatcher.Start(config.CredentialsFilePath()); err != nil {
			log.Printf("[WARN] credentials watcher disabled: %v", err)
			credWatcher = nil
		}
	}

	// Wait for interrupt signal to gracefully shutdown the server
	<-quit
	signal.Stop(quit)

	log.Println("Shutting down server...")

	close(done)
	if credWatcher != nil {
		credWatcher.Stop()
	}

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// runJanitor sweeps expired tokens at the given interval until done is
// closed.
func (s *Server) runJanitor(interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed := s.cache.CleanupExpired()
			metrics.AddCleanupRemoved(removed)
			metrics.SetCachedTokens(s.cache.Len())
		case <-done:
			return
		}
	}
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (both paths for compatibility)
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	limiter := middleware.NewSubjectRateLimiter(
		config.AppConfig.RateLimitPerMinute,
		config.AppConfig.RateLimitBurst,
	)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/token",
			middleware.RequireSubjectToken(),
			limiter.Middleware(func(c *gin.Context) string {
				return middleware.SubjectTokenFromRequest(c.Request)
			}),
			s.issueToken,
		)
		v1.DELETE("/token/:user_id", s.invalidateToken)

		admin := v1.Group("/admin", middleware.BasicAuth())
		{
			admin.POST("/cache/clear", s.clearCache)
			admin.GET("/cache/stats", s.cacheStats)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"cached_tokens": s.cache.Len(),
		"timestamp":     time.Now().Unix(),
	})
}
