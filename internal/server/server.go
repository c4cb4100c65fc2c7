// Package server wires the dependency chain — store, cache, services,
// handlers — and owns the HTTP listener lifecycle. It is the composition
// root: nothing else in the codebase constructs cross-layer dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/cache"
	"github.com/pollbox/pollbox/internal/config"
	"github.com/pollbox/pollbox/internal/handler"
	"github.com/pollbox/pollbox/internal/middleware"
	sqliteRepo "github.com/pollbox/pollbox/internal/repository/sqlite"
	"github.com/pollbox/pollbox/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain from config.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()
	github := auth.NewGitHubProvider(
		s.cfg.GitHubClientID, s.cfg.GitHubClientSecret, s.cfg.GitHubCallbackURL)

	viewCache, err := cache.New(s.cfg.CacheSize, s.cfg.CacheTTL)
	if err != nil {
		return err
	}

	pollService := service.NewPollService(s.db, viewCache, s.logger)
	voteService := service.NewVoteService(s.db, s.db, viewCache, s.logger)
	commentService := service.NewCommentService(s.db, s.db, viewCache, s.logger)
	authService := service.NewAuthService(s.db, passwords, tokens, s.logger)

	pollHandler := handler.NewPollHandler(pollService, voteService, s.logger)
	voteHandler := handler.NewVoteHandler(voteService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	authHandler := handler.NewAuthHandler(
		authService, github, s.cfg.TokenTTL, s.cfg.FrontendURL, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignUp)
		r.Post("/login", authHandler.HandleSignIn)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth lets a logged-in caller see their
		// own vote on the poll detail.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/polls", pollHandler.HandleList)
			r.Get("/polls/{id}", pollHandler.HandleGet)
			r.Get("/polls/{id}/results", voteHandler.HandleResults)
			r.Get("/polls/{id}/comments", commentHandler.HandleList)
		})

		// Everything that writes requires a caller identity.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Post("/polls", pollHandler.HandleCreate)
			r.Put("/polls/{id}", pollHandler.HandleUpdate)
			r.Delete("/polls/{id}", pollHandler.HandleDelete)
			r.Post("/polls/{id}/votes", voteHandler.HandleCast)
			r.Post("/polls/{id}/comments", commentHandler.HandleCreate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the listener until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
