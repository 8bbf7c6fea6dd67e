package crud

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
)

// SetupRoutes registers the CRUD feature routes.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/crud", func(r chi.Router) {
		r.Get("/databases", handlers.DatabasesSSE)
		r.Post("/refresh", handlers.RefreshSSE)
		r.Post("/database", handlers.UseDatabaseSSE)
		r.Get("/tables", handlers.TablesSSE)
		r.Post("/columns", handlers.ColumnsSSE)
		r.Post("/fetch", handlers.FetchSSE)
		r.Post("/select", handlers.SelectSSE)
		r.Post("/insert", handlers.InsertSSE)
		r.Post("/delete", handlers.DeleteSSE)
		r.Post("/update", handlers.UpdateSSE)
	})

	return nil
}
