package routes

import (
	"github.com/BradenHooton/logingate/internal/handlers"
	"github.com/BradenHooton/logingate/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	admissionHandler *handlers.AdmissionHandler,
	floodGuard middleware.FloodGuardConfig,
	env string,
) {
	router.Get("/health", admissionHandler.Health)

	router.Route("/auth/login", func(r chi.Router) {
		r.With(middleware.FloodGuard(floodGuard)).Post("/admission", admissionHandler.Admit)
		r.Get("/policies", admissionHandler.Policies)

		// Raw key histories are for debugging only
		if env != "production" {
			r.Get("/history/{dimension}", admissionHandler.History)
		}
	})
}
