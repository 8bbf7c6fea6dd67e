package analytics

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
)

// SetupRoutes registers the analytics feature routes.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/analytics", func(r chi.Router) {
		r.Post("/run", handlers.RunQuerySSE)
		r.Post("/playground", handlers.PlaygroundSSE)
		r.Post("/suggest", handlers.SuggestSSE)
		r.Get("/tables", handlers.TablesSSE)
		r.Get("/schema/{name}", handlers.SchemaSSE)
	})

	return nil
}
