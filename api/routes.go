package api

import (
	"github.com/go-chi/chi/v5"
)

// setupIntakeRoutes mounts the public form endpoints under /api
func setupIntakeRoutes(r chi.Router, handlers *routeHandlers) {
	r.Route("/api", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.getHealth())

		r.Post("/project-request", handlers.intakeHandler.createProjectRequest())
		r.Post("/hiring-request", handlers.intakeHandler.createHiringRequest())
		r.Post("/contact", handlers.intakeHandler.createContactMessage())
	})
}
