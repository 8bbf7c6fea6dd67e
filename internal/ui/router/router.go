// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	analyticsFeature "github.com/leapstack-labs/cricdash/internal/ui/features/analytics"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	crudFeature "github.com/leapstack-labs/cricdash/internal/ui/features/crud"
	homeFeature "github.com/leapstack-labs/cricdash/internal/ui/features/home"
	liveFeature "github.com/leapstack-labs/cricdash/internal/ui/features/live"
	"github.com/leapstack-labs/cricdash/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Feature routes
	if err := homeFeature.SetupRoutes(router, deps); err != nil {
		return err
	}

	if err := analyticsFeature.SetupRoutes(router, deps); err != nil {
		return err
	}

	if err := crudFeature.SetupRoutes(router, deps); err != nil {
		return err
	}

	if err := liveFeature.SetupRoutes(router, deps); err != nil {
		return err
	}

	return nil
}
