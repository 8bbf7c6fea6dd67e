package live

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
)

// SetupRoutes registers the live feature routes.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/live", func(r chi.Router) {
		r.Post("/matches", handlers.MatchesSSE)
		r.Get("/scorecard/{id}", handlers.ScorecardSSE)
		r.Post("/players", handlers.SearchPlayersSSE)
		r.Get("/players/{id}", handlers.PlayerSSE)
	})

	return nil
}
