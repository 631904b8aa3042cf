// Package di provides dependency injection configuration for the BookTracker server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/di/providers"
	"github.com/booktrackerapp/booktracker-server/internal/logger"
	"github.com/booktrackerapp/booktracker-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)

	// Upstream sources
	do.Provide(injector, providers.ProvideOpenLibraryClient)
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideMailer)

	// Business services
	do.Provide(injector, providers.ProvideDispatcher)
	do.Provide(injector, providers.ProvideCheckService)
	do.Provide(injector, providers.ProvideSweepService)
	do.Provide(injector, providers.ProvideTrackingService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// BootstrapServer initializes everything the API server needs. This triggers
// lazy initialization through to the listening HTTP server.
func BootstrapServer(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*service.CheckService](injector)
	_ = do.MustInvoke[*service.TrackingService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}

// BootstrapSweep initializes only what a one-shot sweep needs; no HTTP
// server is started.
func BootstrapSweep(injector *do.RootScope) (*service.SweepService, error) {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	return do.MustInvoke[*service.SweepService](injector), nil
}
