package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/potatophant/magnifier/internal/auth"
	"github.com/potatophant/magnifier/internal/config"
	"github.com/potatophant/magnifier/internal/logging"
	"github.com/potatophant/magnifier/internal/repository"
)

// Server wires the auth API onto a fiber app.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	logger   logging.Logger
	codes    *auth.CodeGenerator
	verifier *auth.Verifier
	tokens   auth.TokenService
	users    repository.Users
}

type Option func(*Server)

func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(cfg *config.Config, codes *auth.CodeGenerator, verifier *auth.Verifier, tokens auth.TokenService, users repository.Users, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logging.DefLogger{},
		codes:    codes,
		verifier: verifier,
		tokens:   tokens,
		users:    users,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/auth")

	api.Get("/code", s.GenerateCode)
	api.Get("/token", s.IssueToken)

	api.Get("/user", s.RequireSession, s.GetUser)
	api.Get("/settings", s.RequireSession, s.GetSettings)
	api.Put("/settings", s.RequireSession, s.UpdateSettings)
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("auth service listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
