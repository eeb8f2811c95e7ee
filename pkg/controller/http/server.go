package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr         string
	triggerToken string
	indexDir     string
	notifier     interfaces.FailureNotifier
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithTriggerToken requires a bearer token on the trigger endpoint
func WithTriggerToken(token string) Option {
	return func(c *config) {
		c.triggerToken = token
	}
}

// WithIndexDir lets the health check report index availability
func WithIndexDir(dir string) Option {
	return func(c *config) {
		c.indexDir = dir
	}
}

// WithFailureNotifier reports failed triggered runs
func WithFailureNotifier(notifier interfaces.FailureNotifier) Option {
	return func(c *config) {
		c.notifier = notifier
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates the manual-dispatch HTTP server: a health check
// and a trigger endpoint that starts a post run in the background.
func NewServer(ctx context.Context, runner interfaces.PostRunner, opts ...Option) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", NewHealthHandler(cfg.indexDir).Handle)

	triggerHandler := NewTriggerHandler(cfg.triggerToken, runner, cfg.notifier)
	router.Post("/trigger", triggerHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
