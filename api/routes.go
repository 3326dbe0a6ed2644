package api

import (
	"github.com/go-chi/chi/v5"
)

func setupRoutes(r chi.Router, handlers *routeHandlers) {
	r.Group(func(r chi.Router) {
		r.Use(HTTPLoggingMiddleware)

		r.Get("/", handlers.statusHandler.root())
		r.Get("/test", handlers.statusHandler.diagnostics())

		r.Route("/api", func(r chi.Router) {
			r.Get("/hello", handlers.statusHandler.hello())

			r.Get("/projects", handlers.projectHandler.listProjects())
			r.Post("/projects", handlers.projectHandler.createProject())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
		})
	})
}
