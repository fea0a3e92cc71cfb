package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-intake-backend/config"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(settings config.Settings, submitter Submitter) Server {
	// Bind to 0.0.0.0 for external access
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port)

	startupTime := time.Now()

	router := newRouter(submitter,
		withAllowedOrigins(settings.AllowedOrigins),
		withStartupTime(startupTime),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
		IdleTimeout:  settings.IdleTimeout,
	}

	return Server{server, startupTime}
}

type router struct {
	allowedOrigins []string
	startupTime    time.Time
}

func withAllowedOrigins(origins []string) func(*router) {
	return func(r *router) {
		r.allowedOrigins = origins
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(submitter Submitter, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()

	recoverResponder := NewResponder(log.With().Str("handlerName", "recoverer").Logger()).
		WithFallback(submitter.FallbackMessage())
	chiRouter.Use(LogInternalServerErrors(recoverResponder))

	chiRouter.Use(CORSCheckMiddleware(router.allowedOrigins))
	chiRouter.Use(corsMiddleware(router.allowedOrigins))

	handlers := initializeHandlers(submitter, router.startupTime)
	setupIntakeRoutes(chiRouter, handlers)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefulCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
