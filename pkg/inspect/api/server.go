// Package api provides the HTTP inspection API for CSP message decoding
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/zentalk-csp/pkg/crypto"
	"github.com/ZentaChain/zentalk-csp/pkg/message"
	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// Server represents the HTTP inspection API server
type Server struct {
	router       *gin.Engine
	port         int
	readTimeout  time.Duration
	writeTimeout time.Duration
	httpServer   *http.Server
	limiter      *RateLimiter
	fingerprints *crypto.Fingerprinter
	policyDigest string
	startedAt    time.Time
}

// Config holds server configuration
type Config struct {
	Port           int
	EnableCORS     bool
	RateLimit      int // Requests per minute
	MaxBodySizeKB  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	FingerprintKey []byte // Optional BLAKE2b key for payload fingerprints in logs
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:          8080,
		EnableCORS:    true,
		RateLimit:     100,
		MaxBodySizeKB: 256,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
	}
}

// NewServer creates a new HTTP API server
func NewServer(config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	fingerprints, err := crypto.NewFingerprinter(config.FingerprintKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprinter: %w", err)
	}

	digest, err := policyDigest()
	if err != nil {
		return nil, fmt.Errorf("failed to digest policy table: %w", err)
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		router:       gin.New(),
		port:         config.Port,
		readTimeout:  config.ReadTimeout,
		writeTimeout: config.WriteTimeout,
		limiter:      NewRateLimiter(config.RateLimit),
		fingerprints: fingerprints,
		policyDigest: digest,
		startedAt:    time.Now(),
	}

	server.setupMiddleware(config)
	server.setupRoutes()

	return server, nil
}

// policyDigest hashes the JSON form of every policy row in type order
func policyDigest() (string, error) {
	all := protocol.AllMessageTypes()
	rows := make([]message.Properties, 0, len(all))
	for _, msgType := range all {
		props, _ := message.Lookup(msgType)
		rows = append(rows, props)
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return crypto.HashString(raw), nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(config *Config) {
	// Error recovery
	s.router.Use(gin.Recovery())

	// CORS middleware
	if config.EnableCORS {
		s.router.Use(CORSMiddleware())
	}

	// Request IDs come first so that every later log line can carry one
	s.router.Use(RequestIDMiddleware())

	// Request logging
	s.router.Use(LoggingMiddleware())

	// Rate limiting
	s.router.Use(RateLimitMiddleware(s.limiter))

	// Max request body size
	s.router.Use(MaxBodySizeMiddleware(int64(config.MaxBodySizeKB) << 10))
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// API v1 group
	v1 := s.router.Group("/api/v1")
	{
		// Message type and policy table endpoints
		types := v1.Group("/types")
		{
			types.GET("", s.handleListTypes)
			types.GET("/:type", s.handleGetType)
		}

		// Decoding endpoints
		messages := v1.Group("/messages")
		{
			messages.POST("/decode", s.handleDecode)
		}
	}

	// Health check endpoint (outside versioning)
	s.router.GET("/health", s.handleHealth)
}

// Handler exposes the router, mainly for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("🌐 CSP inspection API starting on port %d...\n", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	fmt.Println("\n🛑 Shutting down CSP inspection API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.limiter.Stop()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	s.limiter.Stop()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
