// Package httpapi exposes AuthService as the JSON endpoints under /api/auth.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type authService interface {
	Register(ctx context.Context, identity, password string) (*services.AuthResult, error)
	Login(ctx context.Context, identity, password string) (*services.AuthResult, error)
	ValidateToken(ctx context.Context, token string) bool
}

type HTTPServer struct {
	address string
	auth    authService
	logger  logging.Logger
	router  *gin.Engine
	cors    CORSConfig
}

// Option customizes an HTTPServer.
type Option func(*HTTPServer)

// WithAllowedOrigins restricts cross-origin access. Without it any origin
// may call the API.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *HTTPServer) {
		s.cors.AllowedOrigins = origins
	}
}

func NewHTTPServer(a string, l logging.Logger, svc authService, opts ...Option) *HTTPServer {
	s := &HTTPServer{
		address: a,
		auth:    svc,
		logger:  l.With("module", "http_server"),
		cors:    DefaultCORSConfig(),
	}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors(s.cors))
	s.routes(r)
	s.router = r

	return s
}

func (s *HTTPServer) routes(r *gin.Engine) {
	r.GET("/healthz", s.healthz)

	api := r.Group("/api/auth")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.POST("/validate", s.validate)
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve handles requests on lis until ctx is done, then drains in-flight
// requests for up to shutdownTimeout.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn(c.Request.Context(), "HTTP request", args...)
			return
		}
		s.logger.Info(c.Request.Context(), "HTTP request", args...)
	}
}
