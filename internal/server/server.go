// Package server is the composition root: it owns the router, wires every
// dependency (DB → services → handlers), and runs the HTTP listener with
// graceful shutdown.
//
// DEPENDENCY FLOW:
//
//	main.go:   config.Load() → server.New(cfg, logger)
//	New():     sqlite.DB → TokenService/PasswordService
//	           → AuthService/StudentService/SubjectService/GradeService
//	           → handlers → routes
//
// Each layer receives only what it needs: services get repository
// interfaces, handlers get services, and nothing below this package knows
// the wiring exists.
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
	"github.com/go-chi/cors"

	"github.com/mnavarro/notas-api/internal/auth"
	"github.com/mnavarro/notas-api/internal/config"
	"github.com/mnavarro/notas-api/internal/handler"
	"github.com/mnavarro/notas-api/internal/middleware"
	sqliteRepo "github.com/mnavarro/notas-api/internal/repository/sqlite"
	"github.com/mnavarro/notas-api/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown (today: the database).
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the fully wired server. Fails fast on anything that would
// otherwise fail at request time: unreachable database, too-short secret.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, handlers, and the route tree.
//
// ROUTE MAP:
//
//	GET    /                          health message (public)
//	POST   /api/auth/register         create account (public)
//	POST   /api/auth/login            obtain bearer token (public)
//	GET    /api/alumnos               ┐
//	POST   /api/alumnos               │
//	GET    /api/alumnos/{id}          │
//	PUT    /api/alumnos/{id}          │
//	DELETE /api/alumnos/{id}          │
//	GET    /api/materias[...]         ├ all behind RequireAuth
//	POST   /api/notas                 │
//	GET    /api/notas/alumno/{id}     │
//	GET    /api/notas/materia/{id}    ┘
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenExpiry)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	studentService := service.NewStudentService(s.db, s.logger)
	subjectService := service.NewSubjectService(s.db, s.logger)
	gradeService := service.NewGradeService(s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	studentHandler := handler.NewStudentHandler(studentService, s.logger)
	subjectHandler := handler.NewSubjectHandler(subjectService, s.logger)
	gradeHandler := handler.NewGradeHandler(gradeService, s.logger)

	// Global middleware, in order: request ID and real IP first (so the
	// logger can use them), panic recovery before anything that can panic,
	// then CORS and our request log.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"mensaje":"Servidor funcionando"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public: getting a token can't require one.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything else requires a valid bearer token whose subject
		// still exists.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, s.db, s.logger))

			r.Get("/alumnos", studentHandler.HandleList)
			r.Post("/alumnos", studentHandler.HandleCreate)
			r.Get("/alumnos/{id}", studentHandler.HandleGetByID)
			r.Put("/alumnos/{id}", studentHandler.HandleUpdate)
			r.Delete("/alumnos/{id}", studentHandler.HandleDelete)

			r.Get("/materias", subjectHandler.HandleList)
			r.Post("/materias", subjectHandler.HandleCreate)
			r.Get("/materias/{id}", subjectHandler.HandleGetByID)
			r.Put("/materias/{id}", subjectHandler.HandleUpdate)
			r.Delete("/materias/{id}", subjectHandler.HandleDelete)

			r.Post("/notas", gradeHandler.HandleUpsert)
			r.Get("/notas/alumno/{id}", gradeHandler.HandleStudentReport)
			r.Get("/notas/materia/{id}", gradeHandler.HandleSubjectReport)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests (30s budget) and closes the database so the WAL is flushed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
