// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/handler"
	"jokesite/src/app/http/response"
	"jokesite/src/app/http/session"
	"jokesite/src/app/http/views"
	"jokesite/src/app/middleware"
	"jokesite/src/core/ports"
	"jokesite/src/core/usecase"
	"jokesite/src/infra/config"
	"jokesite/src/infra/security"
)

// Deps are the storage adapters the server runs on.
type Deps struct {
	Users ports.UserRepository
	Jokes ports.JokeRepository
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// addr is set once the listener is bound, before ready is closed.
	addr  string
	ready chan struct{}

	sessions *session.Manager

	// Handlers
	healthHandler   *handler.HealthHandler
	jokeHandler     *handler.JokeHandler
	authHandler     *handler.AuthHandler
	feedHandler     *handler.FeedHandler
	manifestHandler *handler.ManifestHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, deps Deps) (*Server, error) {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()
	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	codec, err := security.NewJWTSessionCodec(cfg.Session.Secret, cfg.Session.MaxAge)
	if err != nil {
		return nil, err
	}
	hasher := security.NewBcryptHasher(cfg.Session.PasswordCost)

	// Create services
	authService, err := usecase.NewAuthService(deps.Users, hasher, codec, log)
	if err != nil {
		return nil, err
	}
	jokeService := usecase.NewJokeService(deps.Jokes, log)
	healthService := usecase.NewHealthService(log, map[string]ports.Repository{
		"users": deps.Users,
		"jokes": deps.Jokes,
	})

	sessions := session.NewManager(authService, cfg.Session, log)

	s := &Server{
		cfg:             cfg,
		log:             log,
		router:          router,
		ready:           make(chan struct{}),
		sessions:        sessions,
		healthHandler:   handler.NewHealthHandler(healthService),
		jokeHandler:     handler.NewJokeHandler(jokeService, sessions, cfg.Site, log),
		authHandler:     handler.NewAuthHandler(authService, sessions, cfg.Site, log),
		feedHandler:     handler.NewFeedHandler(jokeService, cfg.Site),
		manifestHandler: handler.NewManifestHandler(cfg.Site),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s, nil
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery needs the request ID and page meta set before
	// the handler runs, so those go first.
	s.router.Use(middleware.RequestID(s.log))
	s.router.Use(middleware.SiteMeta(s.cfg.Site))
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.SecureHeaders())
	s.router.Use(middleware.Logging(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoints (no session)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	s.router.GET("/manifest.json", s.manifestHandler.Manifest)
	s.router.GET("/jokes.rss", s.feedHandler.RSS)
	s.router.GET("/logout", s.authHandler.LogoutRedirect)
	s.router.POST("/logout", s.authHandler.Logout)

	pages := s.router.Group("/", middleware.CurrentUser(s.sessions))
	{
		pages.GET("", handler.Index)

		pages.GET("/login", s.authHandler.LoginPage)
		pages.POST("/login", s.authHandler.Login)

		pages.GET("/jokes", s.jokeHandler.Index)
		pages.GET("/jokes/new", s.jokeHandler.New)
		pages.POST("/jokes/new", s.jokeHandler.Create)
		pages.GET("/jokes/:slug", s.jokeHandler.Detail)
		pages.POST("/jokes/:slug", s.jokeHandler.Action)
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "The requested page was not found", middleware.GetRequestID(c))
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It returns on SIGINT/SIGTERM or when ctx is cancelled, after draining
// in-flight requests, and returns nil when Shutdown is called directly.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr(), err)
	}
	s.addr = ln.Addr().String()
	close(s.ready)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "addr", s.addr)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("received shutdown signal")
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr is the address the listener is bound to. It is only valid once
// WaitForReady has returned nil.
func (s *Server) Addr() string {
	return s.addr
}

// WaitForReady waits until Run is listening and /health answers 200.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	select {
	case <-s.ready:
	case <-time.After(timeout):
		return fmt.Errorf("server not listening after %v", timeout)
	}

	client := &http.Client{Timeout: timeout}
	for time.Now().Before(deadline) {
		resp, err := client.Get("http://" + s.addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
