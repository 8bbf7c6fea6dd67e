// Package home serves the dashboard page and its change stream.
package home

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Get("/", handlers.HomePage)
	router.Get("/api/updates", handlers.UpdatesSSE)

	return nil
}
